package archive

import "sync"

// LatestCache tiene in memoria gli ultimi risultati ingeriti (newest-first):
// fallback dell'API quando la query Influx fallisce.
type LatestCache struct {
	mu   sync.RWMutex
	max  int
	rows []Evaluation
}

func NewLatestCache(max int) *LatestCache {
	if max <= 0 {
		max = 100
	}
	return &LatestCache{max: max}
}

func (c *LatestCache) Add(e Evaluation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append([]Evaluation{e}, c.rows...)
	if len(c.rows) > c.max {
		c.rows = c.rows[:c.max]
	}
}

// Recent ritorna al massimo limit righe, dalla più recente.
func (c *LatestCache) Recent(limit int) []Evaluation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if limit <= 0 || limit > len(c.rows) {
		limit = len(c.rows)
	}
	out := make([]Evaluation, limit)
	copy(out, c.rows[:limit])
	return out
}

// EvaluationFrom proietta un evento risultato nella payload dell'API.
func EvaluationFrom(evt ArchivedEvent) Evaluation {
	f := evt.Fields
	return Evaluation{
		SurveyID:      evt.SurveyID,
		RequestID:     evt.RequestID,
		QPContrastPPM: toFloat(f["qp_contrast_ppm"]),
		IPContrastPPM: toFloat(f["ip_contrast_ppm"]),
		DetectableQP:  toBool(f["detectable_qp"]),
		DetectableIP:  toBool(f["detectable_ip"]),
		Time:          evt.Timestamp.UTC().Format(timeLayout),
	}
}
