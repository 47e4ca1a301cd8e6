// Package azure drives the asynchronous Azure cost report workflow.
//
// Report generation on the provider side takes minutes, so the workflow is
// split so that no single call ever blocks on it:
//
//	StartReport  submit generation, returns the opaque Location URL
//	PollOnce     one non-blocking status check against that URL
//	DownloadCSV  fetch the finished report bytes from the blob link
//	ParseCSV     decode the bytes into BillingRecord rows
//
// The Location URL is the only state that crosses the start/poll boundary;
// a caller may resume polling from a different process with nothing but that
// URL and fresh credentials. WaitForReport is a bounded blocking convenience
// for callers without a wall-clock limit; it is layered on PollOnce, never
// the other way around.
//
// Tokens come from a client-credentials grant via azidentity and are cached
// for the lifetime of one client instance. ChinaCloud selects the
// chinacloudapi.cn authority and management endpoints at construction; no
// process environment is touched.
package azure
