package otel

import otelMetric "go.opentelemetry.io/otel/metric"

const (
	meterPrefix       = "darkbot.http."
	clientMeterPrefix = meterPrefix + "client."
)

type allMeters struct {
	client clientMeters
	http   httpMeters
}

type clientMeters struct {
	inFlight  otelMetric.Int64UpDownCounter
	duration  otelMetric.Float64Histogram
	bodyBytes otelMetric.Int64Counter
}

type httpMeters struct {
	inFlight otelMetric.Int64UpDownCounter
	duration otelMetric.Float64Histogram
}

func newMeters(meter otelMetric.Meter) *allMeters {
	return &allMeters{
		client: clientMeters{
			inFlight:  upDownCounter(meter, clientMeterPrefix+"request.in_flight", "HTTP client: in flight requests."),
			duration:  histogram(meter, clientMeterPrefix+"request.duration", "HTTP client: requests duration, including body reading.", "ms"),
			bodyBytes: counter(meter, clientMeterPrefix+"request.body_bytes", "HTTP client: response body bytes read.", "By"),
		},
		http: httpMeters{
			inFlight: upDownCounter(meter, meterPrefix+"request.in_flight", "HTTP request: in flight requests."),
			duration: histogram(meter, meterPrefix+"request.duration", "HTTP request: response received duration (without body).", "ms"),
		},
	}
}

func upDownCounter(meter otelMetric.Meter, name, desc string) otelMetric.Int64UpDownCounter {
	return mustInstrument(meter.Int64UpDownCounter(name, otelMetric.WithDescription(desc)))
}

func counter(meter otelMetric.Meter, name, desc, unit string) otelMetric.Int64Counter {
	return mustInstrument(meter.Int64Counter(name, otelMetric.WithDescription(desc), otelMetric.WithUnit(unit)))
}

func histogram(meter otelMetric.Meter, name, desc string, unit string) otelMetric.Float64Histogram {
	return mustInstrument(meter.Float64Histogram(name, otelMetric.WithDescription(desc), otelMetric.WithUnit(unit)))
}

func mustInstrument[T any](instrument T, err error) T {
	if err != nil {
		panic(err)
	}
	return instrument
}
