// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/calibration"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/cat"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/config"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/exposure"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/learn"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/metrics"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/persistence"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/report"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

// Service is the process-wide façade over every domain package, the single
// thing cmd/vocabcat/main.go constructs and the httpapi handlers call into —
// the same role the teacher's trace.Service plays over its graph store,
// agent loop, and memory index.
type Service struct {
	cfg      config.Config
	bank     *calibration.BankPublisher
	exposure *exposure.Controller
	sessions *cat.Manager
	stopping cat.StoppingConfig
	store    persistence.Port
	dist     *learn.Distributions
	logger   *slog.Logger

	goalMu    sync.Mutex
	goals     map[string]*goalState
	totalSessionsEver int64
}

// New builds a Service wired from an already-loaded item bank and a
// persistence port. Passing a nil store runs the service with archival
// disabled (useful for tests and for the synthetic-corpus demo mode).
func New(cfg config.Config, bank *item.Bank, store persistence.Port) *Service {
	return &Service{
		cfg:      cfg,
		bank:     calibration.NewBankPublisher(bank),
		exposure: exposure.NewController(),
		sessions: cat.NewManager(cfg.Session.TTL),
		stopping: cfg.Stopping.ToCat(),
		store:    store,
		dist:     learn.LoadDistributions(),
		logger:   slog.Default(),
	}
}

// Bank returns the currently published item bank.
func (s *Service) Bank() *item.Bank { return s.bank.Bank() }

// ActiveSessions returns the number of CAT sessions currently registered.
func (s *Service) ActiveSessions() int { return s.sessions.Count() }

// StartTest begins a new CAT session (spec.md §4.4-§4.6).
func (s *Service) StartTest(ctx context.Context, req StartTestRequest) (StartTestResult, error) {
	ctx, span := metrics.Tracer.Start(ctx, metrics.SpanSelectNextItem)
	defer span.End()

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	now := time.Now()
	if s.store != nil {
		if err := retryPersist(ctx, func() error {
			return s.store.UpsertUser(ctx, persistence.UserRecord{
				ID: userID, Nickname: req.Nickname, CreatedAt: now, LastActiveAt: now,
			})
		}); err != nil {
			return StartTestResult{}, err
		}
	}

	sessionID := uuid.NewString()
	profile := cat.Profile{
		Grade:          req.Grade,
		SelfAssess:     req.SelfAssess,
		ExamExperience: req.ExamExperience,
		PreferredType:  req.QuestionType,
	}
	sess := cat.NewSession(sessionID, userID, profile, sessionSeed(sessionID), now)
	s.sessions.Put(sess)
	s.exposure.RecordSessionStarted()
	metrics.RecordSessionStarted()
	s.goalMu.Lock()
	s.totalSessionsEver++
	s.goalMu.Unlock()
	metrics.SetActiveSessions(s.sessions.Count())

	rendered, err := s.administerNext(sess, now)
	if err != nil {
		return StartTestResult{}, err
	}

	return StartTestResult{
		SessionID:    sessionID,
		UserID:       userID,
		InitialTheta: sess.Theta(),
		FirstItem:    rendered,
		Progress:     buildProgress(sess, false),
	}, nil
}

// administerNext selects and issues the next item for a session already
// passing EvaluateStop, or returns nil if the selector's pool is exhausted.
func (s *Service) administerNext(sess *cat.Session, now time.Time) (*item.RenderedItem, error) {
	bank := s.Bank()
	sel, ok := cat.SelectNext(sess, bank, s.exposure)
	if !ok {
		sess.Terminate(cat.ReasonPoolExhausted, now)
		return nil, nil
	}
	if sel.Relaxed {
		metrics.RecordExposureRelaxation()
	}
	if err := sess.Administer(sel.Item, sel.QuestionType, now); err != nil {
		return nil, err
	}
	s.exposure.RecordAdministered(sel.Item.ID, now)
	metrics.RecordItemAdministered()

	rendered, ok := bank.Render(sel.Item.ID, sel.QuestionType, item.RenderSeed(sess.SelectionSeed, sel.Item.ID))
	if !ok {
		return nil, vocaberr.New(vocaberr.InvariantViolation, "selected item could not be rendered")
	}
	return &rendered, nil
}

// RespondTest submits an answer to the currently pending item and either
// returns the next item or, if a stopping rule fires, the terminal report
// (spec.md §4.5, §4.6).
func (s *Service) RespondTest(ctx context.Context, sessionID string, req RespondRequest) (RespondResult, error) {
	ctx, span := metrics.Tracer.Start(ctx, metrics.SpanUpdatePosterior)
	defer span.End()

	var result RespondResult
	err := s.sessions.WithSession(sessionID, func(sess *cat.Session) error {
		bank := s.Bank()
		bankItem, ok := bank.Get(req.ItemID)
		if !ok {
			return vocaberr.New(vocaberr.BadRequest, "unknown item id")
		}
		now := time.Now()
		_, err := sess.SubmitResponse(bankItem, cat.SubmittedResponse{
			ItemID:         req.ItemID,
			IsCorrect:      req.IsCorrect,
			IsDontKnow:     req.IsDontKnow,
			ResponseTimeMs: req.ResponseTimeMs,
		}, now)
		if err != nil {
			metrics.RecordResponseRejected(string(vocaberr.KindOf(err)))
			return err
		}

		if reason, stop := cat.EvaluateStop(sess, s.stopping); stop {
			return s.terminateSession(ctx, sess, reason, now, &result)
		}

		rendered, err := s.administerNext(sess, now)
		if err != nil {
			return err
		}
		if rendered == nil {
			return s.terminateSession(ctx, sess, cat.ReasonPoolExhausted, now, &result)
		}
		result = RespondResult{
			IsComplete: false,
			Progress:   buildProgress(sess, false),
			NextItem:   rendered,
		}
		return nil
	})
	return result, err
}

// terminateSession finalizes a session, archives it, and fills in result
// with its terminal report. Must be called while holding the session's
// shard lock (i.e. from within Manager.WithSession).
func (s *Service) terminateSession(ctx context.Context, sess *cat.Session, reason cat.TerminationReason, now time.Time, result *RespondResult) error {
	_, span := metrics.Tracer.Start(ctx, metrics.SpanTerminateSession)
	defer span.End()

	sess.Terminate(reason, now)
	rep := s.buildReport(sess)
	metrics.RecordSessionTerminated(string(reason), sess.ItemsAdministered(), now.Sub(sess.StartedAt).Seconds())
	metrics.SetActiveSessions(s.sessions.Count())

	if s.store != nil {
		if err := retryPersist(ctx, func() error {
			return s.store.ArchiveSession(ctx, persistence.SessionRecord{
				ID: sess.ID, UserID: sess.LearnerID, StartedAt: sess.StartedAt,
				LastActivityAt: sess.LastActivityAt, CompletedAt: now,
				FinalTheta: sess.Theta(), FinalSE: sess.SE(), TerminationReason: reason,
			})
		}); err != nil {
			s.logger.Error("archive session failed", slog.String("session_id", sess.ID), slog.Any("error", err))
		}
		for _, r := range sess.Responses {
			resp := r
			if err := retryPersist(ctx, func() error {
				return s.store.AppendResponse(ctx, persistence.ResponseRecord{
					ID: uuid.NewString(), SessionID: sess.ID, ItemID: resp.ItemID,
					QuestionType: int(resp.QuestionType), IsCorrect: resp.IsCorrect,
					IsDontKnow: resp.IsDontKnow, ResponseTimeMs: resp.ResponseTimeMs,
					ThetaAfter: resp.ThetaAfter, SEAfter: resp.SEAfter, SequenceIdx: resp.SequenceIdx,
				})
			}); err != nil {
				s.logger.Error("append response failed", slog.String("session_id", sess.ID), slog.Any("error", err))
			}
		}
	}
	// The session stays registered (State == StateTerminated) so
	// GetResults/StudyPlan/KnowledgeMatrix can still read it; SweepExpired
	// drops it once idle past the configured TTL (cat/sessionmanager.go).

	*result = RespondResult{
		IsComplete: true,
		Progress:   buildProgress(sess, true),
		Results:    &rep,
	}
	return nil
}

// minItemsForFullReport is the administered-item floor below which a report
// is flagged insufficient_data on expiry or pool exhaustion (spec.md §4.6:
// "partial report is still generated if items_administered >= 5, else
// report is insufficient_data"; spec.md §8 scenario 6 applies the same
// floor to pool exhaustion). Normal termination reasons (hard cap, SE
// threshold, convergence) all require more items than this floor to fire,
// so in practice the flag only ever trips for expired/pool_exhausted.
const minItemsForFullReport = 5

// buildReport derives the terminal report from a session's final posterior
// and response history (spec.md §4.7).
func (s *Service) buildReport(sess *cat.Session) ResultsReport {
	bank := s.Bank()
	theta, se := sess.Theta(), sess.SE()
	cefr := report.ClassifyCEFR(theta, se)
	probs := make(map[string]float64, len(cefr.Probabilities))
	for band, p := range cefr.Probabilities {
		probs[string(band)] = p
	}
	scores := report.DimensionScores(sess)
	scorePayload := make([]DimensionScorePayload, len(scores))
	var weak []string
	for i, ds := range scores {
		scorePayload[i] = DimensionScorePayload{Dimension: string(ds.Dimension), HasScore: ds.HasScore, Score: ds.Score}
		if ds.HasScore && ds.Score < 60 {
			weak = append(weak, string(ds.Dimension))
		}
	}
	topicCorrect, topicTotal := report.BuildTopicCounts(sess, bank)
	strengths, weaknesses := report.TopicBreakdown(topicCorrect, topicTotal)

	return ResultsReport{
		SessionID:         sess.ID,
		UserID:            sess.LearnerID,
		FinalTheta:        theta,
		FinalSE:           se,
		TerminationReason: sess.TerminationReason,
		ItemsAdministered: sess.ItemsAdministered(),
		InsufficientData:  sess.ItemsAdministered() < minItemsForFullReport,
		CEFR:              CEFRPayload{Band: string(cefr.Band), Probabilities: probs},
		CurriculumLevel:   report.CurriculumLevel(theta),
		VocabularySize:    report.VocabularySize(theta, bank),
		DimensionScores:   scorePayload,
		Strengths:         topicRatePayloads(strengths),
		Weaknesses:        topicRatePayloads(weaknesses),
		OxfordCoverage:    report.OxfordCoreCoverage(theta, bank),
	}
}

func topicRatePayloads(rs []report.TopicRate) []TopicRatePayload {
	out := make([]TopicRatePayload, len(rs))
	for i, r := range rs {
		out[i] = TopicRatePayload{Topic: r.Topic, Rate: r.Rate, Total: r.Total}
	}
	return out
}

// GetResults returns the terminal report for an already-terminated session.
// Terminated sessions stay registered for up to one session TTL past
// termination (cat.Manager.SweepExpired) so this, StudyPlan, and
// KnowledgeMatrix can all read them; beyond that window only the archived
// summary row survives in the persistence port, and a client must fall back
// to GetHistory instead.
func (s *Service) GetResults(ctx context.Context, sessionID string) (ResultsReport, error) {
	var rep ResultsReport
	err := s.sessions.WithSession(sessionID, func(sess *cat.Session) error {
		if sess.State != cat.StateTerminated {
			return vocaberr.New(vocaberr.Conflict, "session is not yet complete")
		}
		rep = s.buildReport(sess)
		return nil
	})
	return rep, err
}

// GetHistory returns a user's archived session summaries, most recent first.
func (s *Service) GetHistory(ctx context.Context, userID string) (HistoryResult, error) {
	if s.store == nil {
		return HistoryResult{UserID: userID}, nil
	}
	recs, err := s.store.LoadHistory(ctx, userID)
	if err != nil {
		return HistoryResult{}, err
	}
	entries := make([]HistoryEntry, len(recs))
	for i, r := range recs {
		entries[i] = HistoryEntry{
			SessionID: r.ID, StartedAt: r.StartedAt, CompletedAt: r.CompletedAt,
			FinalTheta: r.FinalTheta, FinalSE: r.FinalSE,
			TerminationReason: string(r.TerminationReason),
		}
	}
	return HistoryResult{UserID: userID, TotalSessions: len(entries), Sessions: entries}, nil
}

// SweepExpiredSessions terminates and archives idle sessions past TTL. Meant
// to be called periodically by a background ticker in cmd/vocabcat.
func (s *Service) SweepExpiredSessions(ctx context.Context) {
	now := time.Now()
	for _, sess := range s.sessions.SweepExpired(now) {
		var discard RespondResult
		_ = s.terminateSessionLocked(ctx, sess, &discard)
	}
	metrics.SetActiveSessions(s.sessions.Count())
}

// terminateSessionLocked mirrors terminateSession for sessions the sweeper
// already removed from the registry (so no shard lock needs re-acquiring).
func (s *Service) terminateSessionLocked(ctx context.Context, sess *cat.Session, result *RespondResult) error {
	rep := s.buildReport(sess)
	if s.store != nil {
		_ = retryPersist(ctx, func() error {
			return s.store.ArchiveSession(ctx, persistence.SessionRecord{
				ID: sess.ID, UserID: sess.LearnerID, StartedAt: sess.StartedAt,
				LastActivityAt: sess.LastActivityAt, CompletedAt: currentTime(),
				FinalTheta: sess.Theta(), FinalSE: sess.SE(), TerminationReason: sess.TerminationReason,
			})
		})
	}
	*result = RespondResult{IsComplete: true, Progress: buildProgress(sess, true), Results: &rep}
	return nil
}

func currentTime() time.Time { return time.Now() }

// sessionSeed derives a deterministic int64 selection seed from a session
// ID, the same fnv-hash-of-string approach item.RenderSeed uses for
// per-(session,item) render seeds.
func sessionSeed(sessionID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sessionID))
	return int64(h.Sum64())
}
