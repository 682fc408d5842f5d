// Package bots provides the event-driven bot runtime. Bots are compiled-in
// handlers that execute in response to FHIR resource events (create, update,
// delete) delivered by the event webhook, or to manual invocations. Each
// event is processed to completion by one bot at a time; there is no
// parallel fan-out and no cross-event shared state.
package bots

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

// Event is the input to a bot execution: the resource that triggered it
// (subscription bots) or free-form parameters (manual bots).
type Event struct {
	ResourceType string                 `json:"resource_type,omitempty"`
	Event        string                 `json:"event,omitempty"`
	Resource     map[string]interface{} `json:"resource,omitempty"`
	Params       map[string]string      `json:"params,omitempty"`
}

// Handler is the single entry point of a bot. Success is a nil return;
// failure surfaces to the runtime as a failed execution record.
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

// Trigger defines when a bot executes.
type Trigger struct {
	Type         string `json:"type"`
	ResourceType string `json:"resource_type,omitempty"`
	Event        string `json:"event,omitempty"`
}

// Bot couples a handler with its registration metadata.
type Bot struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	Trigger       Trigger    `json:"trigger"`
	Handler       Handler    `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	LastRunStatus string     `json:"last_run_status,omitempty"`
	RunCount      int        `json:"run_count"`
}

// Outcome is the result of a single bot execution.
type Outcome struct {
	BotID    string        `json:"bot_id"`
	BotName  string        `json:"bot_name"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration_ms"`
	Error    string        `json:"error,omitempty"`
}

// ExecutionLog records a bot execution for audit.
type ExecutionLog struct {
	ID        string    `json:"id"`
	BotID     string    `json:"bot_id"`
	BotName   string    `json:"bot_name"`
	Input     Event     `json:"input"`
	Outcome   Outcome   `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

var validStatuses = map[string]bool{
	"active":   true,
	"inactive": true,
}

var validTriggerTypes = map[string]bool{
	"subscription": true,
	"manual":       true,
}

func validateBot(b Bot) error {
	if b.ID == "" {
		return fmt.Errorf("bot id is required")
	}
	if b.Name == "" {
		return fmt.Errorf("bot name is required")
	}
	if b.Handler == nil {
		return fmt.Errorf("bot handler is required")
	}
	if !validTriggerTypes[b.Trigger.Type] {
		return fmt.Errorf("invalid trigger type: %s (supported: subscription, manual)", b.Trigger.Type)
	}
	if b.Trigger.Type == "subscription" && b.Trigger.ResourceType == "" {
		return fmt.Errorf("subscription trigger requires a resource type")
	}
	if b.Status != "" && !validStatuses[b.Status] {
		return fmt.Errorf("invalid status: %s (supported: active, inactive)", b.Status)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

const (
	defaultMaxLogs          = 1000
	defaultExecutionTimeout = 30 * time.Second
)

// Engine holds the bot registry and dispatches events to matching bots.
type Engine struct {
	bots             map[string]*Bot
	botOrder         []string // preserve insertion order
	execLogs         []ExecutionLog
	mu               sync.RWMutex
	maxLogs          int
	executionTimeout time.Duration
	logger           zerolog.Logger
}

// NewEngine creates an Engine with sensible defaults.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		bots:             make(map[string]*Bot),
		maxLogs:          defaultMaxLogs,
		executionTimeout: defaultExecutionTimeout,
		logger:           logger,
	}
}

// Register adds or updates a bot.
func (e *Engine) Register(bot Bot) error {
	if err := validateBot(bot); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	existing, exists := e.bots[bot.ID]
	if exists {
		// Preserve original CreatedAt and run stats
		bot.CreatedAt = existing.CreatedAt
		bot.RunCount = existing.RunCount
		bot.LastRunAt = existing.LastRunAt
		bot.LastRunStatus = existing.LastRunStatus
	} else {
		bot.CreatedAt = now
		e.botOrder = append(e.botOrder, bot.ID)
	}
	bot.UpdatedAt = now
	if bot.Status == "" {
		bot.Status = "active"
	}

	stored := bot
	e.bots[bot.ID] = &stored
	return nil
}

// Get retrieves a bot by ID.
func (e *Engine) Get(id string) (*Bot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	bot, ok := e.bots[id]
	if !ok {
		return nil, fmt.Errorf("bot %s not found", id)
	}
	copy := *bot
	return &copy, nil
}

// List returns all bots, optionally filtered by status.
func (e *Engine) List(status string) []Bot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]Bot, 0, len(e.bots))
	for _, id := range e.botOrder {
		bot, ok := e.bots[id]
		if !ok {
			continue
		}
		if status == "" || bot.Status == status {
			result = append(result, *bot)
		}
	}
	return result
}

// Delete removes a bot from the registry. Its execution logs are kept.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.bots[id]; !ok {
		return fmt.Errorf("bot %s not found", id)
	}
	delete(e.bots, id)
	for i, botID := range e.botOrder {
		if botID == id {
			e.botOrder = append(e.botOrder[:i], e.botOrder[i+1:]...)
			break
		}
	}
	return nil
}

// SetStatus activates or deactivates a bot.
func (e *Engine) SetStatus(id, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	bot, ok := e.bots[id]
	if !ok {
		return fmt.Errorf("bot %s not found", id)
	}
	bot.Status = status
	bot.UpdatedAt = time.Now()
	return nil
}

// Execute runs a single bot with the given input.
func (e *Engine) Execute(ctx context.Context, botID string, input Event) (*Outcome, error) {
	bot, err := e.Get(botID)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{BotID: bot.ID, BotName: bot.Name}

	if bot.Status != "active" {
		outcome.Status = "error"
		outcome.Error = fmt.Sprintf("bot %s is not active (status: %s)", bot.ID, bot.Status)
		e.recordExecution(bot, input, outcome)
		return outcome, nil
	}

	execCtx, cancel := context.WithTimeout(ctx, e.executionTimeout)
	defer cancel()

	start := time.Now()
	execErr := bot.Handler.Handle(execCtx, input)
	outcome.Duration = time.Since(start)

	if execErr != nil {
		outcome.Status = "error"
		outcome.Error = execErr.Error()
		e.logger.Error().Err(execErr).Str("bot", bot.ID).Msg("bot execution failed")
	} else {
		outcome.Status = "success"
	}

	e.recordExecution(bot, input, outcome)
	return outcome, nil
}

// DispatchEvent runs every active subscription bot matching the event,
// sequentially in registration order. A failing bot is recorded but does not
// prevent the remaining bots from running.
func (e *Engine) DispatchEvent(ctx context.Context, resourceType, event string, resource map[string]interface{}) []Outcome {
	e.mu.RLock()
	var matching []string
	for _, id := range e.botOrder {
		bot := e.bots[id]
		if bot == nil || bot.Status != "active" {
			continue
		}
		if bot.Trigger.Type != "subscription" {
			continue
		}
		if bot.Trigger.ResourceType != resourceType {
			continue
		}
		if bot.Trigger.Event != "" && bot.Trigger.Event != "*" && bot.Trigger.Event != event {
			continue
		}
		matching = append(matching, id)
	}
	e.mu.RUnlock()

	input := Event{
		ResourceType: resourceType,
		Event:        event,
		Resource:     resource,
	}

	results := make([]Outcome, 0, len(matching))
	for _, id := range matching {
		out, err := e.Execute(ctx, id, input)
		if err != nil {
			results = append(results, Outcome{BotID: id, Status: "error", Error: err.Error()})
			continue
		}
		results = append(results, *out)
	}
	return results
}

// Logs returns execution logs for a specific bot.
func (e *Engine) Logs(botID string) []ExecutionLog {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var result []ExecutionLog
	for _, log := range e.execLogs {
		if log.BotID == botID {
			result = append(result, log)
		}
	}
	return result
}

// AllLogs returns all execution logs.
func (e *Engine) AllLogs() []ExecutionLog {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]ExecutionLog, len(e.execLogs))
	copy(result, e.execLogs)
	return result
}

// recordExecution logs a bot execution and updates bot stats.
func (e *Engine) recordExecution(bot *Bot, input Event, outcome *Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.bots[bot.ID]; ok {
		now := time.Now()
		b.LastRunAt = &now
		b.LastRunStatus = outcome.Status
		b.RunCount++
	}

	log := ExecutionLog{
		ID:        uuid.New().String(),
		BotID:     bot.ID,
		BotName:   bot.Name,
		Input:     input,
		Outcome:   *outcome,
		Timestamp: time.Now(),
	}

	if len(e.execLogs) >= e.maxLogs {
		// Ring buffer: remove oldest
		e.execLogs = e.execLogs[1:]
	}
	e.execLogs = append(e.execLogs, log)
}
