package main

import (
	"context"
	"embed"
	"flag"
	"io"
	"net/http"

	"github.com/fastly/compute-sdk-go/fsthttp"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"openrtb-fastly-compute/auction"
	"openrtb-fastly-compute/client"
	"openrtb-fastly-compute/config"
	"openrtb-fastly-compute/edge"
	"openrtb-fastly-compute/requester"
)

//go:embed requester.yaml
var serviceConfig embed.FS

func main() {
	// Compute has no writable log directory.
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	configBytes, err := serviceConfig.ReadFile("requester.yaml")
	if err != nil {
		glog.Fatalf("Failed to read config: %v", err)
	}
	cfg, err := config.Parse(configBytes)
	if err != nil {
		glog.Fatalf("Failed to load config: %v", err)
	}
	glog.Infof("Forwarding OpenRTB %s bid requests to %s via backend %s",
		cfg.Exchange.Version, cfg.Exchange.Endpoint, cfg.Exchange.Backend)

	fsthttp.ServeFunc(func(ctx context.Context, w fsthttp.ResponseWriter, r *fsthttp.Request) {
		if r.URL.Path != "/openrtb2/auction" {
			w.WriteHeader(fsthttp.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(fsthttp.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			glog.Errorf("Failed to read request body: %v", err)
			w.WriteHeader(fsthttp.StatusBadRequest)
			return
		}

		version, err := auction.SelectVersion(r.Header.Get(client.HeaderOpenRTBVersion), body, cfg.Exchange.Version)
		if err != nil {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(fsthttp.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}

		requestID := uuid.NewString()
		glog.V(1).Infof("request %s: forwarding OpenRTB %s bid request (%d bytes)", requestID, version, len(body))

		bidRequester := requester.New(
			edge.NewTransport(cfg.Exchange.Backend, r.Header.Get("Cookie")),
			cfg.Exchange.Defaults,
			requester.WithCredentials(cfg.Exchange.WithCredentials),
			requester.WithCacheControl(cfg.Exchange.CacheControl),
		)
		result := auction.NewHandler(bidRequester, cfg.Exchange).Handle(ctx, version, body, requestID)

		if result.ContentType != "" {
			w.Header().Set("Content-Type", result.ContentType)
		}
		w.Header().Set(auction.HeaderRequestID, requestID)
		w.WriteHeader(result.StatusCode)
		if len(result.Body) > 0 {
			w.Write(result.Body)
		}
	})
}
