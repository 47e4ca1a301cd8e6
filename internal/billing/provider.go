package billing

// Provider identifies a cloud provider or cost source
type Provider string

// Known providers. AWS and Huawei are registered but unimplemented.
const (
	ProviderAlibaba  Provider = "alibaba"
	ProviderAzure    Provider = "azure"
	ProviderAWS      Provider = "aws"
	ProviderHuawei   Provider = "huawei"
	ProviderKubecost Provider = "kubecost"
)

// AWSStub is a placeholder for the AWS billing client
type AWSStub struct {
	Region string
}

// FetchBill always returns ErrNotImplemented
func (s *AWSStub) FetchBill(billingCycle string) error {
	return ErrNotImplemented
}

// HuaweiStub is a placeholder for the Huawei Cloud billing client
type HuaweiStub struct {
	AccessKey string
	SecretKey string
	ProjectID string
}

// FetchBill always returns ErrNotImplemented
func (s *HuaweiStub) FetchBill(billingCycle string) error {
	return ErrNotImplemented
}
