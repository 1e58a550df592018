package gateway

import (
	"net/http"
	"time"

	deepresearch "github.com/dresearch/deepresearch-core"
)

// doWithRetry issues a request built by newReq, retrying with doubling
// backoff on HTTP 429, the way search/metasearch.go's Search loop backs
// off a SearXNG 429 — generalized here across the provider arms since
// every model API can rate-limit the same way. newReq is called again on
// each retry so a body already consumed by the previous attempt is never
// reused.
func doWithRetry(client *http.Client, newReq func() (*http.Request, error)) (*http.Response, error) {
	delay := 1 * time.Second
	for {
		req, err := newReq()
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()
		select {
		case <-req.Context().Done():
			return nil, deepresearch.TimeoutError{Op: "generate"}
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
}
