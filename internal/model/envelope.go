package model

// Envelope is the payload published to Kafka (via Debezium outbox SMT).
type Envelope struct {
	JobID   string `json:"job_id"`
	Country string `json:"country"`
}
