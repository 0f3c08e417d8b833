package validators

// Static reference data consulted by the validators. All tables here are
// read-only: load once, share across every validation run.

// ThroughputBenchmarks maps a technology token to its approximate per-node
// request/message capacity, with a second figure for the same technology
// running with replicas/sharding/horizontal scaling.
type ThroughputBenchmark struct {
	PerNode     int
	WithReplicas int
}

var ThroughputBenchmarks = map[string]ThroughputBenchmark{
	"postgresql": {PerNode: 5000, WithReplicas: 20000},
	"postgres":   {PerNode: 5000, WithReplicas: 20000},
	"mysql":      {PerNode: 5000, WithReplicas: 20000},
	"mongodb":    {PerNode: 8000, WithReplicas: 30000},
	"redis":      {PerNode: 50000, WithReplicas: 200000},
	"cassandra":  {PerNode: 10000, WithReplicas: 100000},
	"dynamodb":   {PerNode: 40000, WithReplicas: 400000},
	"kafka":      {PerNode: 10000, WithReplicas: 100000},
	"rabbitmq":   {PerNode: 20000, WithReplicas: 80000},
	"elasticsearch": {PerNode: 3000, WithReplicas: 15000},
	"nginx":      {PerNode: 10000, WithReplicas: 50000},
	"node.js":    {PerNode: 5000, WithReplicas: 40000},
	"nodejs":     {PerNode: 5000, WithReplicas: 40000},
	"golang":     {PerNode: 15000, WithReplicas: 100000},
	"go":         {PerNode: 15000, WithReplicas: 100000},
	"java":       {PerNode: 8000, WithReplicas: 60000},
	"python":     {PerNode: 2000, WithReplicas: 20000},
}

// ComponentAvailability maps a technology or component-type token to its
// commonly cited single-instance availability figure (fraction, not
// percent).
var ComponentAvailability = map[string]float64{
	"postgresql":    0.999,
	"postgres":      0.999,
	"mysql":         0.999,
	"mongodb":       0.999,
	"redis":         0.9999,
	"dynamodb":      0.99999,
	"s3":            0.999999,
	"cloudfront":    0.9999,
	"rds":           0.9995,
	"aurora":        0.9999,
	"kafka":         0.9995,
	"nginx":         0.9999,
	"kubernetes":    0.9995,
	"elasticsearch": 0.999,
	"service":       0.999,
	"gateway":       0.9995,
	"cache":         0.9999,
	"database":      0.999,
	"queue":         0.9995,
}

// EventuallyConsistentDBs is the set of databases commonly understood to
// offer eventual (not strong) consistency by default.
var EventuallyConsistentDBs = map[string]bool{
	"dynamodb":    true,
	"cassandra":   true,
	"cosmosdb":    true,
	"couchbase":   true,
	"riak":        true,
	"mongodb":     true, // default read concern is eventual unless configured otherwise
	"s3":          true,
}

// MessageBrokerTokens are tech-stack tokens that indicate an event-driven
// messaging backbone.
var MessageBrokerTokens = []string{
	"kafka", "rabbitmq", "sqs", "sns", "pubsub", "pulsar", "nats",
	"eventbridge", "servicebus", "activemq", "kinesis",
}

// EnterpriseServiceTokens are tech-stack tokens treated as "enterprise
// class" for operational-complexity purposes.
var EnterpriseServiceTokens = []string{
	"kafka", "msk", "elasticsearch", "cassandra", "kubernetes", "istio",
	"vault", "consul",
}

// RedundancyTokens indicate that a component has been designed for
// failover/horizontal redundancy.
var RedundancyTokens = []string{
	"cluster", "replica", "replicas", "replication", "multi-az", "multi_az",
	"failover", "standby", "sentinel", "ha ", "high availability",
}

// SingleInstanceTokens explicitly indicate a component lacks redundancy.
var SingleInstanceTokens = []string{
	"single", "standalone", "single-node", "single instance",
}

// ScalingTokens indicate horizontal scaling capability in a component's
// scaling strategy or tech stack text.
var ScalingTokens = []string{
	"horizontal", "replica", "replicas", "shard", "sharding", "partition",
	"partitioning", "cluster", "auto-scal", "autoscal", "auto scal",
}

// ShardingTokens indicate a database has been explicitly partitioned.
var ShardingTokens = []string{"shard", "sharding", "partition", "partitioning"}

// StatelessTokens and LocalStateTokens are the two contradictory claims the
// contradiction validator watches for on the same component.
var StatelessTokens = []string{"stateless"}
var LocalStateTokens = []string{"local state", "local cache", "in-memory state", "session affinity", "sticky session"}

// KubernetesTokens indicate a Kubernetes-based deployment, which contradicts
// a serverless architecture style.
var KubernetesTokens = []string{"kubernetes", "k8s", "eks", "gke", "aks"}

// CapabilityKeywords maps a capability name to the requirement-text
// keywords that suggest a caller expects it, and the severity to raise if
// the artifact never mentions it.
type CapabilityRule struct {
	Keywords []string
	Severity Severity
	Category string
}

var RequirementComponentMap = map[string]CapabilityRule{
	"auth": {
		Keywords: []string{"auth", "login", "sign in", "signin", "authentication", "authorization"},
		Severity: SeverityHigh, Category: "security",
	},
	"analytics": {
		Keywords: []string{"analytics", "tracking", "metrics dashboard", "reporting"},
		Severity: SeverityMedium, Category: "operational",
	},
	"disaster_recovery": {
		Keywords: []string{"disaster recovery", "backup", "failover", "business continuity"},
		Severity: SeverityHigh, Category: "reliability",
	},
	"monitoring": {
		Keywords: []string{"monitoring", "observability", "alerting", "logging"},
		Severity: SeverityHigh, Category: "operational",
	},
	"encryption": {
		Keywords: []string{"encrypt", "encryption", "pii", "sensitive data", "compliance"},
		Severity: SeverityHigh, Category: "security",
	},
	"rate_limiting": {
		Keywords: []string{"rate limit", "throttle", "abuse prevention"},
		Severity: SeverityHigh, Category: "security",
	},
	"search": {
		Keywords: []string{"search", "full-text", "full text"},
		Severity: SeverityMedium, Category: "operational",
	},
	"notification": {
		Keywords: []string{"notification", "notify", "email alert", "push notification", "sms"},
		Severity: SeverityMedium, Category: "operational",
	},
	"caching": {
		Keywords: []string{"cache", "caching", "fast retrieval", "low latency read"},
		Severity: SeverityMedium, Category: "scalability",
	},
}

// DomainPattern is one built-in domain rule document consulted by the
// domain-pattern validator.
type DomainPattern struct {
	Name                string
	Keywords            []string
	MandatoryPatterns   []string
	RecommendedPatterns []string
	AntiPatterns        []string
}

// BuiltinDomainPatterns are shipped as part of the binary; an operator may
// layer additional documents on top via LoadDomainPatternsYAML.
var BuiltinDomainPatterns = []DomainPattern{
	{
		Name:     "e-commerce",
		Keywords: []string{"ecommerce", "e-commerce", "shopping", "cart", "checkout", "order", "catalog", "inventory", "payment"},
		MandatoryPatterns: []string{
			"payment", "inventory",
		},
		RecommendedPatterns: []string{
			"cache", "cdn", "search",
		},
		AntiPatterns: []string{
			"monolith",
		},
	},
	{
		Name:     "fintech",
		Keywords: []string{"fintech", "banking", "ledger", "transaction", "wallet", "payment processing", "financial"},
		MandatoryPatterns: []string{
			"strong", "audit",
		},
		RecommendedPatterns: []string{
			"encryption", "queue",
		},
		AntiPatterns: []string{
			"eventual",
		},
	},
	{
		Name:     "social-chat",
		Keywords: []string{"chat", "messaging", "social", "feed", "timeline", "direct message", "real-time communication"},
		MandatoryPatterns: []string{
			"queue", "cache",
		},
		RecommendedPatterns: []string{
			"cdn", "websocket",
		},
		AntiPatterns: []string{},
	},
	{
		Name:     "iot",
		Keywords: []string{"iot", "sensor", "device", "telemetry", "edge", "mqtt"},
		MandatoryPatterns: []string{
			"queue", "time series",
		},
		RecommendedPatterns: []string{
			"cache", "stream",
		},
		AntiPatterns: []string{},
	},
}
