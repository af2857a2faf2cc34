package metrics

// IncrementCommentAdded increments the top-level comment counter
func (m *Metrics) IncrementCommentAdded() {
	m.safeExecute("IncrementCommentAdded", func() {
		m.CommentsAddedTotal.Inc()
	})
}

// IncrementReplyAdded increments the reply counter
func (m *Metrics) IncrementReplyAdded() {
	m.safeExecute("IncrementReplyAdded", func() {
		m.RepliesAddedTotal.Inc()
	})
}

// IncrementLikeToggled increments the like toggle counter
func (m *Metrics) IncrementLikeToggled() {
	m.safeExecute("IncrementLikeToggled", func() {
		m.LikesToggledTotal.Inc()
	})
}

// IncrementRevalidation counts a re-fetch caused by a failed mutation
func (m *Metrics) IncrementRevalidation() {
	m.safeExecute("IncrementRevalidation", func() {
		m.RevalidationsOnError.Inc()
	})
}

// RecordThreadLoad records the outcome of a thread load
func (m *Metrics) RecordThreadLoad(err error) {
	m.safeExecute("RecordThreadLoad", func() {
		m.ThreadLoadsTotal.WithLabelValues(resultLabel(err)).Inc()
	})
}

// RecordLogin records the outcome of a login attempt
func (m *Metrics) RecordLogin(err error) {
	m.safeExecute("RecordLogin", func() {
		m.LoginsTotal.WithLabelValues(resultLabel(err)).Inc()
	})
}

// SetActiveThreads sets the number of live thread view-models
func (m *Metrics) SetActiveThreads(count int) {
	m.safeExecute("SetActiveThreads", func() {
		m.ActiveThreads.Set(float64(count))
	})
}

// AddStreamSubscribers adjusts the open stream gauge by delta
func (m *Metrics) AddStreamSubscribers(delta int) {
	m.safeExecute("AddStreamSubscribers", func() {
		m.StreamSubscribers.Add(float64(delta))
	})
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// SetSessionStoreEntries sets the number of persisted session rows
func (m *Metrics) SetSessionStoreEntries(count int64) {
	m.safeExecute("SetSessionStoreEntries", func() {
		m.SessionStoreEntries.Set(float64(count))
	})
}
