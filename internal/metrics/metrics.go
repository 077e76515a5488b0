// Package metrics decouples the sourcing engine from a concrete instrumentation backend.
package metrics

// Recorder receives sourcing run events.
type Recorder interface {
	// BandSearched is called once per radius band after its batch is reduced.
	BandSearched(radius float64, newClusters int)
	// ClusterEvaluated counts a finished cluster evaluation.
	ClusterEvaluated(ok bool)
	// RunFinished records the terminal outcome of a run.
	RunFinished(outcome string, shortfall bool)
	// MoveInChunks records how many round-trip calls a move-in needed.
	MoveInChunks(n int)
}

type nop struct{}

func (nop) BandSearched(float64, int) {}
func (nop) ClusterEvaluated(bool)     {}
func (nop) RunFinished(string, bool)  {}
func (nop) MoveInChunks(int)          {}

// Nop returns a Recorder that drops everything.
func Nop() Recorder { return nop{} }
