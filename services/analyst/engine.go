// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyst

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/backends"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/compose"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/confidence"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/config"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/dispatch"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/gate"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/intent"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/viz"
)

// Fixed tier confidences. The deterministic tier is the only one that
// computes a data-dependent score.
const (
	gateConfidence   = 0.30
	remoteConfidence = 0.90
	localConfidence  = 0.85
	faultConfidence  = 0.20
)

const faultAnswer = "I hit an unexpected problem while analyzing your data. " +
	"Please try rephrasing the question or re-uploading the dataset."

// =========================================================================
// Engine
// =========================================================================

// Engine answers questions about a tabular dataset. Each question walks
// a fixed tier chain: gate check, remote model, local model, and finally
// the deterministic analytics pipeline, which cannot fail to produce an
// answer. No tier is retried; each is attempted at most once.
//
// Thread Safety: Engine is safe for concurrent use. All mutable state is
// per-call; the pattern corpus and synonym dictionary are read-only.
type Engine struct {
	cfg        *config.EngineConfig
	gate       *gate.Gate
	classifier *intent.Classifier
	dispatcher *dispatch.Dispatcher

	// remote and local are nil when the corresponding backend is not
	// configured; Ask skips unconfigured tiers.
	remote backends.ChatClient
	local  backends.ChatClient

	remoteTimeout time.Duration
	localTimeout  time.Duration
}

// NewEngine builds an Engine from validated configuration.
//
// Inputs:
//   - cfg: Engine configuration. Must have passed Validate.
//
// Outputs:
//   - *Engine: Ready to serve questions.
func NewEngine(cfg *config.EngineConfig) *Engine {
	e := &Engine{
		cfg:           cfg,
		gate:          gate.New(cfg.ShortQuestionWords),
		classifier:    intent.NewClassifier(),
		dispatcher:    dispatch.New(cfg.AnomalyZThreshold),
		remoteTimeout: cfg.RemoteTimeout,
		localTimeout:  cfg.LocalTimeout,
	}
	if cfg.OpenAIAPIKey != "" {
		e.remote = backends.NewOpenAIClient(
			cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL,
			cfg.RemoteTimeout, backends.NewRateLimiter(map[string]int{config.ProviderOpenAI: cfg.RemoteRateLimit}),
		)
	}
	if cfg.OllamaBaseURL != "" {
		e.local = backends.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.LocalTimeout)
	}
	return e
}

// Ask answers one question against the session's dataset.
//
// # Description
//
//	Runs the tier chain. A gate rejection short-circuits with guidance
//	and suggested questions. The remote and local model tiers are
//	attempted once each when configured; any error demotes to the next
//	tier. The deterministic tier always terminates with a well-formed
//	envelope, converting internal panics into a low-confidence answer.
//
// Inputs:
//   - ctx: Caller context. Bounds the model tier calls.
//   - question: The raw user question.
//   - ds: The session dataset. May be nil.
//   - convo: Conversation history for the session. May be nil.
//
// Outputs:
//   - *datatypes.AnswerEnvelope: Never nil.
//
// Thread Safety: Safe for concurrent use as long as ds is not mutated.
func (e *Engine) Ask(ctx context.Context, question string, ds *datatypes.Dataset, convo *datatypes.ConversationContext) *datatypes.AnswerEnvelope {
	ctx, span := otel.Tracer(engineTracerName).Start(ctx, "analyst.Engine.Ask",
		trace.WithAttributes(attribute.Int("question_len", len(question))),
	)
	defer span.End()

	start := time.Now()
	envelope := e.ask(ctx, question, ds, convo)
	envelope.ElapsedSeconds = time.Since(start).Seconds()
	if envelope.Recommendations == nil {
		envelope.Recommendations = []string{}
	}

	span.SetAttributes(
		attribute.String("source", string(envelope.Source)),
		attribute.Float64("confidence", envelope.Confidence),
	)
	recordAsk(envelope.Source, time.Since(start))
	slog.Info("answered question",
		slog.String("source", string(envelope.Source)),
		slog.Float64("confidence", envelope.Confidence),
		slog.Float64("elapsed_seconds", envelope.ElapsedSeconds),
	)
	return envelope
}

func (e *Engine) ask(ctx context.Context, question string, ds *datatypes.Dataset, convo *datatypes.ConversationContext) *datatypes.AnswerEnvelope {
	if verdict := e.gate.Evaluate(question, ds); verdict.IsVague {
		gateRejectionsTotal.Inc()
		return &datatypes.AnswerEnvelope{
			Answer:          verdict.Guidance,
			Confidence:      gateConfidence,
			Recommendations: verdict.Suggestions,
			Source:          datatypes.TierGate,
		}
	}

	if envelope := e.askModel(ctx, datatypes.TierRemote, e.remote, e.remoteTimeout, remoteConfidence, question, ds, convo); envelope != nil {
		return envelope
	}
	if envelope := e.askModel(ctx, datatypes.TierLocal, e.local, e.localTimeout, localConfidence, question, ds, convo); envelope != nil {
		return envelope
	}
	return e.askDeterministic(question, ds, convo)
}

// askModel runs one model tier. A nil client means the tier is not
// configured. Returns nil when the tier could not answer so the caller
// falls through to the next tier.
func (e *Engine) askModel(ctx context.Context, tier datatypes.Tier, client backends.ChatClient, timeout time.Duration, conf float64, question string, ds *datatypes.Dataset, convo *datatypes.ConversationContext) *datatypes.AnswerEnvelope {
	if client == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := backends.BuildMessages(question, ds, convo)
	answer, err := client.Chat(callCtx, messages, backends.ChatOptions{Temperature: 0.3, MaxTokens: 1000})
	if err != nil {
		tierFailuresTotal.WithLabelValues(string(tier), string(backends.CodeOf(err))).Inc()
		slog.Warn("model tier failed, falling through",
			slog.String("tier", string(tier)),
			slog.String("code", string(backends.CodeOf(err))),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if convo != nil {
		convo.Append(question, datatypes.Intent{Category: datatypes.CategoryUnknown})
	}
	return &datatypes.AnswerEnvelope{
		Answer:     answer,
		Confidence: conf,
		Chart:      viz.HeuristicChart(question, answer, ds),
		Source:     tier,
	}
}

// askDeterministic runs the full analytics pipeline. It never fails: a
// panic anywhere inside the pipeline becomes a low-confidence envelope.
func (e *Engine) askDeterministic(question string, ds *datatypes.Dataset, convo *datatypes.ConversationContext) (envelope *datatypes.AnswerEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("deterministic pipeline panicked", slog.Any("panic", r))
			tierFailuresTotal.WithLabelValues(string(datatypes.TierDeterministic), "panic").Inc()
			envelope = &datatypes.AnswerEnvelope{
				Answer:     faultAnswer,
				Confidence: faultConfidence,
				Source:     datatypes.TierDeterministic,
			}
		}
	}()

	classified := e.classifier.Classify(question, ds)
	result := e.dispatcher.Execute(classified, question, ds)

	envelope = &datatypes.AnswerEnvelope{
		Answer:          compose.Compose(result),
		Confidence:      confidence.Score(classified, ds, result),
		Chart:           viz.Synthesize(classified.Category, result),
		Recommendations: compose.Recommendations(result),
		Source:          datatypes.TierDeterministic,
	}
	if convo != nil {
		convo.Append(question, classified)
	}
	return envelope
}
