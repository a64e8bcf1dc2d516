// internal/nlp/pipeline/pipeline.go
//
// Package pipeline runs the query understanding stages in order and
// assembles the QueryResult. It holds no mutable state, so one Processor
// serves concurrent requests.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"contract-query-workers/internal/common/logger"
	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/action"
	"contract-query-workers/internal/nlp/classifier"
	"contract-query-workers/internal/nlp/display"
	"contract-query-workers/internal/nlp/extractor"
	"contract-query-workers/internal/nlp/normalizer"
	"contract-query-workers/internal/nlp/rules"
	"contract-query-workers/internal/nlp/tokenizer"
	"contract-query-workers/pkg/registry"
)

var ErrProcessing = errors.New(models.CodeProcessingError)

// Clock supplies the current time for date rules and timing.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Observer is told about every assembled result.
type Observer interface {
	ObserveQuery(result *models.QueryResult, corrections int)
}

type Option func(*Processor)

func WithClock(c Clock) Option {
	return func(p *Processor) { p.clock = c }
}

func WithLogger(l logger.Logger) Option {
	return func(p *Processor) { p.log = l }
}

func WithObserver(o Observer) Option {
	return func(p *Processor) { p.observer = o }
}

type Processor struct {
	normalizer *normalizer.Normalizer
	extractor  *extractor.Extractor
	display    *display.Resolver
	rules      *rules.Validator
	clock      Clock
	log        logger.Logger
	observer   Observer
}

func NewProcessor(reg registry.ColumnRegistry, dict registry.SpellDictionary, opts ...Option) *Processor {
	p := &Processor{
		normalizer: normalizer.New(dict),
		extractor:  extractor.New(reg),
		display:    display.New(reg),
		rules:      rules.New(reg),
		clock:      SystemClock{},
		log:        logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(map[string]interface{}{"component": "query-pipeline"})
	return p
}

// Process interprets text using the processor clock as the current date.
func (p *Processor) Process(text string) *models.QueryResult {
	return p.ProcessAt(text, p.clock.Now())
}

// ProcessAt interprets text with now as the current date. It never panics
// and never returns nil; failures become a PROCESSING_ERROR result.
func (p *Processor) ProcessAt(text string, now time.Time) (result *models.QueryResult) {
	start := p.clock.Now()
	corrections := 0

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic: %v", ErrProcessing, r)
			p.log.Error("query processing panicked", map[string]interface{}{
				"error": err.Error(),
				"input": text,
			})
			result = processingError(text, err)
			corrections = 0
		}
		elapsed := p.clock.Now().Sub(start).Milliseconds()
		if elapsed < 0 {
			elapsed = 0
		}
		result.Metadata.ProcessingTimeMs = elapsed
		if p.observer != nil {
			p.observer.ObserveQuery(result, corrections)
		}
	}()

	res, n, err := p.run(text, now)
	if err != nil {
		p.log.Error("query processing failed", map[string]interface{}{
			"error": err.Error(),
			"input": text,
		})
		return processingError(text, err)
	}
	corrections = n
	return res
}

func (p *Processor) run(text string, now time.Time) (*models.QueryResult, int, error) {
	norm := p.normalizer.Normalize(text)
	tokens := tokenizer.Tokenize(norm.Text)

	ex := p.extractor.Extract(extractor.Input{
		Original:   text,
		Normalized: norm.Text,
		Tokens:     tokens,
		Now:        now,
	})

	cls := classifier.Classify(norm.Text, &ex)

	act, err := action.Resolve(cls, ex.Header, ex.Filters, norm.Text)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	fields := p.display.Resolve(act, cls.QueryType, rules.TableFor(act, cls), norm.Text)

	outcome := p.rules.Apply(rules.Request{
		Action:         act,
		Classification: cls,
		Header:         ex.Header,
		Filters:        ex.Filters,
		Issues:         ex.Issues,
		Text:           norm.Text,
	})

	p.log.Debug("query classified", map[string]interface{}{
		"queryType":   cls.QueryType,
		"rule":        cls.Rule,
		"actionType":  act,
		"table":       outcome.Table,
		"tokens":      len(tokens),
		"filters":     len(outcome.Filters),
		"corrections": norm.Corrections,
	})

	tracking := models.InputTracking{OriginalInput: text, Confidence: norm.Confidence}
	if norm.Corrections > 0 {
		corrected := norm.Text
		tracking.CorrectedInput = &corrected
	}

	return &models.QueryResult{
		InputTracking: tracking,
		Header:        ex.Header,
		Metadata: models.QueryMetadata{
			QueryType:  cls.QueryType,
			ActionType: act,
		},
		Entities:      outcome.Filters,
		DisplayFields: fields,
		Errors:        outcome.Errors,
	}, norm.Corrections, nil
}

// processingError is the single-error result returned for unexpected
// failures.
func processingError(text string, err error) *models.QueryResult {
	return &models.QueryResult{
		InputTracking: models.InputTracking{OriginalInput: text},
		Metadata: models.QueryMetadata{
			QueryType:  models.QueryTypeContracts,
			ActionType: models.ActionError,
		},
		Entities:      []models.EntityFilter{},
		DisplayFields: []string{},
		Errors: []models.ValidationError{{
			Code:     models.CodeProcessingError,
			Message:  err.Error(),
			Severity: models.SeverityBlocker,
		}},
	}
}
