package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ui-xd/test-stream-sub001/pkg/config/monitoring"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

type Monitoring struct {
	conf   monitoring.Config
	server *http.Server
	log    *logger.Logger
}

// New creates new monitoring service.
func New(conf monitoring.Config, log *logger.Logger) *Monitoring {
	log = log.Module("monitoring")
	h := http.NewServeMux()
	addr := fmt.Sprintf(":%d", conf.Port)

	if conf.ProfilingEnabled {
		prefix := fmt.Sprintf("%s/debug/pprof", conf.URLPrefix)
		log.Info().Msgf("Profiling is enabled at %v", addr+prefix)
		h.HandleFunc(prefix+"/", pprof.Index)
		h.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
		h.HandleFunc(prefix+"/profile", pprof.Profile)
		h.HandleFunc(prefix+"/symbol", pprof.Symbol)
		h.HandleFunc(prefix+"/trace", pprof.Trace)
		// custom pprof prefixes need the named profiles explicitly
		for _, p := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			h.Handle(prefix+"/"+p, pprof.Handler(p))
		}
	}
	if conf.MetricEnabled {
		metricPath := fmt.Sprintf("%s/metrics", conf.URLPrefix)
		log.Info().Msgf("Prometheus metric is enabled at %v", addr+metricPath)
		h.Handle(metricPath, promhttp.Handler())
	}

	return &Monitoring{
		conf:   conf,
		server: &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second},
		log:    log,
	}
}

func (m *Monitoring) Run() {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		m.log.Error().Err(err).Msg("listen")
		return
	}
	m.log.Info().Msgf("Starting monitoring server at %v", ln.Addr())
	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Msg("serve")
		}
	}()
}

func (m *Monitoring) Shutdown(ctx context.Context) error {
	m.log.Info().Msg("Shutting down monitoring server")
	return m.server.Shutdown(ctx)
}

func (m *Monitoring) String() string {
	return fmt.Sprintf("monitoring::%s:%d", m.conf.URLPrefix, m.conf.Port)
}
