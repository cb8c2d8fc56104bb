package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfKeyResolution is perf metric
	PerfKeyResolution = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_pgp_keys",
		Help:         "perf_pgp_keys provides the sample metrics of key resolution operations",
		RequiredTags: []string{"op"},
	}

	// PerfKeyringDecode is perf metric
	PerfKeyringDecode = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_pgp_keyring_decode",
		Help:         "perf_pgp_keyring_decode provides the sample metrics of keyring decoding",
		RequiredTags: []string{"source"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfKeyResolution,
	&PerfKeyringDecode,
}
