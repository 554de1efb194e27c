package stream

import (
	"github.com/rajivksingh13/darbiter/pkg/rules"
)

// TopicRouter decides which topics an event is published to.
type TopicRouter struct {
	topics Topics
}

// NewTopicRouter creates a router over the given topic configuration.
func NewTopicRouter(topics Topics) *TopicRouter {
	return &TopicRouter{topics: topics}
}

// Route returns the topics for an event. Every event goes to the findings
// topic; critical-severity events also go to the critical topic, and
// secret-category events also go to the secrets topic.
func (r *TopicRouter) Route(event Event) []string {
	topics := []string{r.topics.Findings}
	if event.Severity == rules.SeverityCritical {
		topics = append(topics, r.topics.Critical)
	}
	if event.Category == rules.CategorySecret {
		topics = append(topics, r.topics.Secrets)
	}
	return topics
}
