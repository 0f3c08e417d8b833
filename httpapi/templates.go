package httpapi

// template is one static sample requirement served by GET /templates, to
// give a caller a quick starting point rather than a blank text box.
type template struct {
	Name         string `json:"name"`
	Requirements string `json:"requirements"`
}

var sampleTemplates = []template{
	{
		Name: "E-commerce order processing",
		Requirements: "Design a system for an online retailer that accepts orders, " +
			"reserves inventory, charges payment, and ships items. Expect 500 " +
			"orders per second at peak, with strict consistency on payment and " +
			"inventory state, and eventual consistency acceptable for order " +
			"history and recommendations. Must survive the loss of a single " +
			"availability zone without dropping orders.",
	},
	{
		Name: "Real-time chat platform",
		Requirements: "Design a chat system supporting 1 million concurrent " +
			"connections across web and mobile clients, with message delivery " +
			"latency under 200ms, message history retained for 90 days, and " +
			"support for group channels up to 10,000 members.",
	},
	{
		Name: "IoT telemetry ingestion",
		Requirements: "Design a system ingesting telemetry from 2 million field " +
			"devices reporting every 30 seconds, with a streaming pipeline for " +
			"anomaly detection, durable long-term storage for historical " +
			"analysis, and a dashboard API serving near-real-time aggregates.",
	},
}
