package observability

import "testing"

func TestParseSampleRatio(t *testing.T) {
	cases := map[string]float64{
		"":     defaultSampleRatio,
		"abc":  defaultSampleRatio,
		"0.5":  0.5,
		"-1":   0,
		"7":    1,
		" 1 ":  1,
		"0.00": 0,
	}
	for in, want := range cases {
		if got := parseSampleRatio(in); got != want {
			t.Fatalf("parseSampleRatio(%q): want=%v got=%v", in, want, got)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" authorization = Bearer x ,broken, =v,k=,x-team=docs")
	if len(got) != 2 || got["authorization"] != "Bearer x" || got["x-team"] != "docs" {
		t.Fatalf("unexpected headers: %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("blank input should give nil")
	}
}

func TestOtelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "k=v")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "1")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.25")

	cfg := OtelConfigFromEnv("learnhub-api", "dev", "1.2.3")
	if !cfg.Enabled || !cfg.Insecure || cfg.Endpoint != "collector:4318" || cfg.SampleRatio != 0.25 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.ServiceName != "learnhub-api" || cfg.Headers["k"] != "v" {
		t.Fatalf("unexpected identity/headers: %+v", cfg)
	}
}
