package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher sends aggregated log batches to an external sink (event stream).
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectionConfig struct {
	TimeInterval   time.Duration // flush interval (e.g., 30s)
	CountThreshold int           // max unique logs before flush (e.g., 100)
	Topic          string        // topic to send aggregated logs
	Publisher      Publisher
}

type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector deduplicates repeated error logs and flushes them in batches,
// either on a timer or when the unique-entry threshold is reached.
type LogCollector struct {
	config *CollectionConfig
	logMap map[string]*AggregatedLogEntry
	mutex  sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	ctx, cancel := context.WithCancel(context.Background())

	c := &LogCollector{
		config: config,
		logMap: make(map[string]*AggregatedLogEntry),
		ctx:    ctx,
		cancel: cancel,
	}

	c.wg.Add(1)
	go c.periodicFlush()

	return c
}

func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := c.dedupeKey(level, message, fields, caller)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, exists := c.logMap[key]; exists {
		entry.Count++
		entry.LastSeen = now
	} else {
		c.logMap[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(c.logMap) >= c.config.CountThreshold {
		c.flushLocked()
	}
}

func (c *LogCollector) dedupeKey(level, message string, fields map[string]interface{}, caller string) string {
	data := struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller}

	b, _ := json.Marshal(data)
	hash := sha256.Sum256(b)
	return fmt.Sprintf("%x", hash)
}

func (c *LogCollector) periodicFlush() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.flushLocked()
			c.mutex.Unlock()
		case <-c.ctx.Done():
			// Final flush before shutdown
			c.mutex.Lock()
			c.flushLocked()
			c.mutex.Unlock()
			return
		}
	}
}

func (c *LogCollector) flushLocked() {
	if len(c.logMap) == 0 {
		return
	}

	logs := make([]AggregatedLogEntry, 0, len(c.logMap))
	for _, entry := range c.logMap {
		logs = append(logs, *entry)
	}
	c.logMap = make(map[string]*AggregatedLogEntry)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.config.Publisher.PublishMessage(ctx, c.config.Topic, logs); err != nil {
			fmt.Printf("failed to send aggregated logs: %v\n", err)
		}
	}()
}

func (c *LogCollector) Close() {
	c.cancel()
	c.wg.Wait()
}
