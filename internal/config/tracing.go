package config

import (
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// ConfigureTracing configures the global tracer from the JAEGER_* environment
// variables. Tracing stays disabled unless JAEGER_SERVICE_NAME is set, in
// which case nil is returned.
func ConfigureTracing(logger logrus.FieldLogger) io.Closer {
	traceCfg, err := jaegercfg.FromEnv()
	if err != nil {
		logger.WithError(err).Info("skipping jaeger configuration step")
		return nil
	}

	if traceCfg.ServiceName == "" {
		return nil
	}

	tracer, closer, err := traceCfg.NewTracer()
	if err != nil {
		logger.WithError(err).Warn("could not initialize jaeger tracer")
		return nil
	}

	opentracing.SetGlobalTracer(tracer)
	return closer
}
