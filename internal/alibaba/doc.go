// Package alibaba provides a client for the Alibaba Cloud BSS OpenAPI
// billing endpoints.
//
// The client drives the paginated bill-fetch loop: it issues signed RPC-style
// requests against business.aliyuncs.com and follows the opaque NextToken
// continuation cursor until the provider terminates the chain. Two operations
// share the same pagination primitive:
//   - FetchInstanceBill: instance-level bill lines for a billing cycle
//     (optionally a single day at daily granularity)
//   - FetchAmortizedCost: amortized-cost lines for an amortization period
//
// Pages are appended in provider-returned order. A blank or whitespace-only
// cursor means "no more data"; a cursor that repeats identically aborts the
// loop, since a well-behaved provider never hands back the same token twice.
//
// Credentials live only on the client instance; one client serves one caller.
package alibaba
