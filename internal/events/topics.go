package events

// Topic constants for domain events emitted by the services.
const (
	TopicOrderCreated       = "order.created"
	TopicCustomerRegistered = "customer.registered"
	TopicProductRegistered  = "product.registered"
	TopicProductToggled     = "product.toggled"
)

// DefaultTopics returns the canonical list of topics.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicCustomerRegistered,
		TopicProductRegistered,
		TopicProductToggled,
	}
}
