// Package storage persists the run history: one record per executed
// crontab command, retained up to a configured cap.
//
// Two drivers ship: a dependency-free jsonl file backend and a SQLite
// backend. Both honor the same retention and ordering contract, so the
// daemon treats them interchangeably through Store.
package storage
