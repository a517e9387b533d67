package launcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// PortBusy reports whether something is already listening on host:port.
func PortBusy(host string, port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), 200*time.Millisecond)
	if err == nil {
		_ = conn.Close()
		return true
	}
	return false
}

// waitHTTP polls url until it answers with a 2xx status or the context
// expires. Used for readiness of the spawned servers.
func waitHTTP(ctx context.Context, client *http.Client, url string) error {
	for {
		reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			cancel()
			return err
		}
		resp, err := client.Do(req)
		cancel()
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s", url)
		case <-time.After(250 * time.Millisecond):
		}
	}
}
