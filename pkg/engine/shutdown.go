package engine

import (
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// ShutdownRemote asks a running fauxhost instance to terminate by posting to
// its /shutdown endpoint. The target address is resolved from the same config
// file the server was started with.
func ShutdownRemote(configPath string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyDefaults(config)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://" + addr + "/shutdown")
	req.Header.SetMethod(fasthttp.MethodPost)

	client := &fasthttp.Client{}
	if err := client.DoTimeout(req, resp, 5*time.Second); err != nil {
		return fmt.Errorf("failed to reach the server at %s: %w", addr, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("unexpected shutdown response from %s: %d", addr, resp.StatusCode())
	}
	return nil
}
