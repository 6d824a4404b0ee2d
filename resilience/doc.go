// Package resilience holds the bulkhead that caps how many analysis
// processes run at once. Each evaluate.py or analyze.py process loads full
// ASR models, so unbounded fan-out exhausts memory long before CPU.
package resilience
