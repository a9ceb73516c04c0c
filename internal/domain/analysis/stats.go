package analysis

// BatchStats value object: counts per state plus completed items split by
// verdict. Derived, never stored.
type BatchStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Analyzing   int `json:"analyzing"`
	Completed   int `json:"completed"`
	Error       int `json:"error"`
	Authentic   int `json:"authentic"`
	Manipulated int `json:"manipulated"`
}

// ComputeStats recomputes BatchStats from the collection.
func ComputeStats(items []TrackedItem) BatchStats {
	var s BatchStats
	s.Total = len(items)
	for _, it := range items {
		switch it.State {
		case StatePending:
			s.Pending++
		case StateAnalyzing:
			s.Analyzing++
		case StateCompleted:
			s.Completed++
			if it.Result != nil && it.Result.IsFake {
				s.Manipulated++
			} else {
				s.Authentic++
			}
		case StateError:
			s.Error++
		}
	}
	return s
}
