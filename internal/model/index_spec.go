package model

// Supported distance metrics.
const (
	MetricCosine     = "cosine"
	MetricEuclidean  = "euclidean"
	MetricDotProduct = "dotproduct"
)

// IndexSpec describes the index the service expects to exist at startup.
type IndexSpec struct {
	Name      string
	Dimension int
	Metric    string
	Cloud     string
	Region    string
}
