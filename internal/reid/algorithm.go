package reid

import "fmt"

// Algorithm identifies a supported re-identification feature family.
// The set is closed: algorithms are chosen at configuration time, and
// mixing families within one matching call is an error because their
// feature spaces are not comparable.
type Algorithm string

const (
	AlgorithmMGN Algorithm = "mgn"
	AlgorithmAGW Algorithm = "agw"
	AlgorithmSBS Algorithm = "sbs"
)

// DefaultAlgorithm is used when a request does not name one.
const DefaultAlgorithm = AlgorithmMGN

// ParseAlgorithm validates an algorithm name from a request or config.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case AlgorithmMGN, AlgorithmAGW, AlgorithmSBS:
		return Algorithm(name), nil
	case "":
		return DefaultAlgorithm, nil
	}
	return "", fmt.Errorf("unsupported reid algorithm %q", name)
}

// FeatureDim returns the declared feature dimension for the family.
// All vectors compared under an algorithm are reconciled to this dimension
// before any distance computation.
func (a Algorithm) FeatureDim() int {
	switch a {
	case AlgorithmMGN:
		return 2048
	case AlgorithmAGW, AlgorithmSBS:
		return 512
	}
	return 0
}
