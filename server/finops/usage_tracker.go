// Package finops tracks LLM token spend so operators can see what
// drafting replies costs.
package finops

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vishalnagda1/outlook-mail-responder/plugin/llm"
)

// maxSamples bounds the in-memory sample window. At one draft per
// email this covers weeks of traffic.
const maxSamples = 10000

// ModelStats aggregates spend for one model.
type ModelStats struct {
	Model            string    `json:"model"`
	Calls            int64     `json:"calls"`
	PromptTokens     int64     `json:"promptTokens"`
	CompletionTokens int64     `json:"completionTokens"`
	TotalTokens      int64     `json:"totalTokens"`
	EstimatedCostUSD float64   `json:"estimatedCostUsd"`
	LastUsed         time.Time `json:"lastUsed"`
}

// UsageReport is the spend summary for one period.
type UsageReport struct {
	Period           string        `json:"period"`
	Calls            int64         `json:"calls"`
	TotalTokens      int64         `json:"totalTokens"`
	EstimatedCostUSD float64       `json:"estimatedCostUsd"`
	ByModel          []*ModelStats `json:"byModel"`
}

type usageSample struct {
	at    time.Time
	usage llm.Usage
}

// UsageTracker is an in-memory token spend ledger. It satisfies
// llm.UsageRecorder.
type UsageTracker struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	samples []usageSample

	nowFunc func() time.Time
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		logger:  slog.Default(),
		nowFunc: time.Now,
	}
}

// RecordUsage appends one call's token usage. Oldest samples fall off
// once the window is full.
func (t *UsageTracker) RecordUsage(usage llm.Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = append(t.samples, usageSample{at: t.nowFunc(), usage: usage})
	if len(t.samples) > maxSamples {
		t.samples = t.samples[len(t.samples)-maxSamples:]
	}

	t.logger.Debug("recorded llm usage",
		"model", usage.Model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
	)
}

// Report summarizes spend since the start of the given period.
// Unknown periods fall back to daily.
func (t *UsageTracker) Report(period string) *UsageReport {
	since := t.periodStart(period)

	t.mu.RLock()
	defer t.mu.RUnlock()

	byModel := make(map[string]*ModelStats)
	report := &UsageReport{Period: period}

	for _, sample := range t.samples {
		if sample.at.Before(since) {
			continue
		}
		usage := sample.usage

		stats, ok := byModel[usage.Model]
		if !ok {
			stats = &ModelStats{Model: usage.Model}
			byModel[usage.Model] = stats
		}
		stats.Calls++
		stats.PromptTokens += int64(usage.PromptTokens)
		stats.CompletionTokens += int64(usage.CompletionTokens)
		stats.TotalTokens += int64(usage.TotalTokens)
		stats.EstimatedCostUSD += EstimateCost(usage.Model, usage.PromptTokens, usage.CompletionTokens)
		if sample.at.After(stats.LastUsed) {
			stats.LastUsed = sample.at
		}

		report.Calls++
		report.TotalTokens += int64(usage.TotalTokens)
	}

	report.ByModel = make([]*ModelStats, 0, len(byModel))
	for _, stats := range byModel {
		report.EstimatedCostUSD += stats.EstimatedCostUSD
		report.ByModel = append(report.ByModel, stats)
	}
	sort.Slice(report.ByModel, func(i, j int) bool {
		return report.ByModel[i].EstimatedCostUSD > report.ByModel[j].EstimatedCostUSD
	})

	return report
}

func (t *UsageTracker) periodStart(period string) time.Time {
	now := t.nowFunc()
	switch period {
	case "weekly", "this_week":
		return now.AddDate(0, 0, -7)
	case "monthly", "this_month":
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(0, 0, -1)
	}
}

// modelPricing is USD per 1M tokens, input and output. Locally hosted
// models cost nothing; hosted APIs use their published rates.
type modelPricing struct {
	inputPer1M  float64
	outputPer1M float64
}

var pricingTable = map[string]modelPricing{
	"gpt-4o":        {inputPer1M: 2.50, outputPer1M: 10.00},
	"gpt-4o-mini":   {inputPer1M: 0.15, outputPer1M: 0.60},
	"deepseek-chat": {inputPer1M: 0.14, outputPer1M: 0.28},
}

// EstimateCost prices one call. Models not in the table (the default
// local Ollama models) cost zero.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	pricing, ok := pricingTable[model]
	if !ok {
		return 0
	}
	inputCost := float64(promptTokens) * pricing.inputPer1M / 1e6
	outputCost := float64(completionTokens) * pricing.outputPer1M / 1e6
	return inputCost + outputCost
}
