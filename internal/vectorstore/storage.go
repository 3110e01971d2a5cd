package vectorstore

// Match is one search hit.
type Match struct {
	ID    string
	Score float64
}

// Storage persists section vectors and supports similarity search.
type Storage interface {
	Init(dimension int) error
	Upsert(ids []string, vectors [][]float64) error
	// Search returns up to topK matches ordered by descending score; a
	// non-positive topK returns every stored vector.
	Search(vector []float64, topK int) ([]Match, error)
	Clear() error
}
