package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
	"github.com/decisionworks/rigor-core/internal/core/rigor"
	"github.com/decisionworks/rigor-core/internal/export"
)

// Ensure analysisService implements AnalysisService
var _ driving.AnalysisService = (*analysisService)(nil)

// analysisService implements the AnalysisService interface
type analysisService struct {
	analysisStore  driven.AnalysisStore
	sourceStore    driven.SourceStore
	workspaceStore driven.WorkspaceStore
	promptStore    driven.PromptStore
	readinessStore driven.ReadinessStore
	auditStore     driven.AuditStore
	packageStore   driven.PackageStore

	calculator *rigor.Calculator
	engine     *rigor.Engine
	packager   *export.Packager
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(
	analysisStore driven.AnalysisStore,
	sourceStore driven.SourceStore,
	workspaceStore driven.WorkspaceStore,
	promptStore driven.PromptStore,
	readinessStore driven.ReadinessStore,
	auditStore driven.AuditStore,
	packageStore driven.PackageStore,
	calculator *rigor.Calculator,
	engine *rigor.Engine,
) driving.AnalysisService {
	return &analysisService{
		analysisStore:  analysisStore,
		sourceStore:    sourceStore,
		workspaceStore: workspaceStore,
		promptStore:    promptStore,
		readinessStore: readinessStore,
		auditStore:     auditStore,
		packageStore:   packageStore,
		calculator:     calculator,
		engine:         engine,
		packager:       export.NewPackager(),
	}
}

// Create creates a new analysis, pinning the prompt pack version
func (s *analysisService) Create(ctx context.Context, creatorID string, req driving.CreateAnalysisRequest) (*domain.Analysis, error) {
	if req.WorkspaceID == "" || req.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	analysisType := req.Type
	if analysisType == "" {
		analysisType = domain.AnalysisTypeGeneral
	}

	if _, err := s.workspaceStore.Get(ctx, req.WorkspaceID); err != nil {
		return nil, err
	}

	var pack *domain.PromptPack
	var err error
	if req.PromptPackID != "" {
		pack, err = s.promptStore.Get(ctx, req.PromptPackID)
	} else {
		pack, err = s.promptStore.GetActiveForUseCase(ctx, string(analysisType))
	}
	if err != nil {
		return nil, fmt.Errorf("resolve prompt pack: %w", err)
	}

	now := time.Now()
	analysis := &domain.Analysis{
		ID:            generateID(),
		WorkspaceID:   req.WorkspaceID,
		Name:          req.Name,
		Type:          analysisType,
		Description:   req.Description,
		PromptPackID:  pack.ID,
		PromptVersion: pack.VersionTag,
		Status:        domain.AnalysisStatusPending,
		CreatedBy:     creatorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.analysisStore.Save(ctx, analysis); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionCreate, analysis.ID, creatorID, fmt.Sprintf("analysis %q created with pack %s", analysis.Name, pack.VersionTag))

	return analysis, nil
}

// Get retrieves an analysis by ID
func (s *analysisService) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	return s.analysisStore.Get(ctx, id)
}

// List retrieves all analyses in a workspace
func (s *analysisService) List(ctx context.Context, workspaceID string) ([]*domain.Analysis, error) {
	return s.analysisStore.List(ctx, workspaceID)
}

// Delete deletes an analysis
func (s *analysisService) Delete(ctx context.Context, id string) error {
	analysis, err := s.analysisStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.analysisStore.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.packageStore.Delete(ctx, id)

	s.audit(ctx, domain.AuditActionDelete, id, "", fmt.Sprintf("analysis %q deleted", analysis.Name))

	return nil
}

// AttachSource links a source to an analysis
func (s *analysisService) AttachSource(ctx context.Context, analysisID string, req driving.AttachSourceRequest) error {
	if req.SourceID == "" {
		return domain.ErrInvalidInput
	}

	analysis, err := s.analysisStore.Get(ctx, analysisID)
	if err != nil {
		return err
	}

	source, err := s.sourceStore.Get(ctx, req.SourceID)
	if err != nil {
		return err
	}

	// Sources cannot cross workspace boundaries
	if source.WorkspaceID != analysis.WorkspaceID {
		return domain.ErrForbidden
	}

	weight := req.Weight
	if weight == 0 {
		weight = 1.0
	}

	return s.analysisStore.AttachSource(ctx, &domain.AnalysisSource{
		AnalysisID:      analysisID,
		SourceID:        req.SourceID,
		Weight:          weight,
		InclusionReason: req.InclusionReason,
		AddedAt:         time.Now(),
	})
}

// DetachSource unlinks a source from an analysis
func (s *analysisService) DetachSource(ctx context.Context, analysisID, sourceID string) error {
	if _, err := s.analysisStore.Get(ctx, analysisID); err != nil {
		return err
	}
	return s.analysisStore.DetachSource(ctx, analysisID, sourceID)
}

// ReportConflict records a contradiction between sources
func (s *analysisService) ReportConflict(ctx context.Context, analysisID string, req driving.ReportConflictRequest) error {
	switch req.Severity {
	case domain.ConflictSeverityCritical, domain.ConflictSeverityHigh,
		domain.ConflictSeverityMedium, domain.ConflictSeverityLow:
	default:
		return fmt.Errorf("%w: unknown conflict severity %q", domain.ErrInvalidInput, req.Severity)
	}

	analysis, err := s.analysisStore.Get(ctx, analysisID)
	if err != nil {
		return err
	}

	analysis.DetectedConflicts = append(analysis.DetectedConflicts, domain.Conflict{
		Severity:    req.Severity,
		Description: req.Description,
		SourceIDs:   req.SourceIDs,
	})
	analysis.UpdatedAt = time.Now()

	return s.analysisStore.Save(ctx, analysis)
}

// Score computes the rigor score over the analysis's sources and records
// a snapshot with the delta from the previous run
func (s *analysisService) Score(ctx context.Context, analysisID string) (*driving.ScoreResponse, error) {
	analysis, err := s.analysisStore.Get(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	docs, err := s.loadDocuments(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	result := s.calculator.Calculate(docs, analysis.DetectedConflicts)

	// Delta against the previous snapshot, if any
	var delta *float64
	previous, err := s.readinessStore.LatestSnapshot(ctx, analysisID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if previous != nil {
		d := result.RigorScore - previous.RigorScore
		delta = &d
	}

	snapshot := &domain.RigorSnapshot{
		ID:                       generateID(),
		AnalysisID:               analysisID,
		RigorScore:               result.RigorScore,
		SourceVeracityScore:      result.SourceVeracityScore,
		ConflictDetectionScore:   result.ConflictDetectionScore,
		LogicPresenceScore:       result.LogicPresenceScore,
		SourceCount:              result.Breakdown.TotalSources,
		AuthoritativeSourceCount: result.Breakdown.AuthoritativeSources,
		DeltaFromPrevious:        delta,
		TriggerEvent:             "score_calculation",
		SnapshotAt:               time.Now(),
	}

	if err := s.readinessStore.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	score := result.RigorScore
	analysis.RigorScore = &score
	analysis.UpdatedAt = time.Now()
	if err := s.analysisStore.Save(ctx, analysis); err != nil {
		return nil, err
	}

	return &driving.ScoreResponse{Result: result, Snapshot: snapshot}, nil
}

// Readiness scans the analysis's sources against its prompt pack's
// required criteria and persists the per-criterion check records
func (s *analysisService) Readiness(ctx context.Context, analysisID string) (*rigor.ReadinessResult, error) {
	analysis, err := s.analysisStore.Get(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	pack, err := s.promptStore.Get(ctx, analysis.PromptPackID)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt pack: %w", err)
	}

	docs, err := s.loadDocuments(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	result := s.engine.ScanSources(ctx, docs, pack)

	now := time.Now()
	records := make([]*domain.CheckRecord, 0, len(result.Checks))
	for _, check := range result.Checks {
		records = append(records, &domain.CheckRecord{
			ID:                generateID(),
			AnalysisID:        analysisID,
			CriterionName:     check.CriterionName,
			CriterionCategory: check.CriterionCategory,
			Status:            check.Status,
			ConfidenceScore:   check.Confidence,
			Reasoning:         check.Reasoning,
			EvidenceSourceIDs: check.EvidenceSourceIDs,
			EvidenceSnippets:  check.EvidenceSnippets,
			CheckedAt:         now,
		})
	}
	if err := s.readinessStore.SaveChecks(ctx, analysisID, records); err != nil {
		return nil, err
	}

	return &result, nil
}

// History retrieves rigor snapshots for an analysis, newest first
func (s *analysisService) History(ctx context.Context, analysisID string, limit int) ([]*domain.RigorSnapshot, error) {
	if _, err := s.analysisStore.Get(ctx, analysisID); err != nil {
		return nil, err
	}
	return s.readinessStore.ListSnapshots(ctx, analysisID, limit)
}

// Export builds the handoff package and marks the analysis exported.
// Fails unless readiness passes.
func (s *analysisService) Export(ctx context.Context, analysisID string, includeCitations bool) (*driving.ExportResponse, error) {
	analysis, err := s.analysisStore.Get(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	pack, err := s.promptStore.Get(ctx, analysis.PromptPackID)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt pack: %w", err)
	}

	sources, err := s.sourceStore.ListByAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.DocumentRecord, 0, len(sources))
	for _, source := range sources {
		docs = append(docs, source.ToRecord())
	}

	// Readiness gates export
	readiness := s.engine.ScanSources(ctx, docs, pack)
	if !readiness.IsReady {
		return nil, fmt.Errorf("%w: readiness %.1f%%, missing %d criteria",
			domain.ErrInvalidInput, readiness.ReadinessScore, len(readiness.MissingCriteria))
	}

	pkg, err := s.packager.Build(analysis, pack, sources, includeCitations)
	if err != nil {
		return nil, fmt.Errorf("build package: %w", err)
	}

	url, err := s.packageStore.Save(ctx, analysisID, pkg.Data)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	analysis.Status = domain.AnalysisStatusCompleted
	analysis.PackageURL = url
	analysis.ExportedAt = &now
	analysis.CompletedAt = &now
	analysis.UpdatedAt = now
	if err := s.analysisStore.Save(ctx, analysis); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionExport, analysisID, "", fmt.Sprintf("analysis %q exported (%d files)", analysis.Name, pkg.FileCount))

	return &driving.ExportResponse{
		PackageURL: url,
		SizeBytes:  int64(len(pkg.Data)),
		FileCount:  pkg.FileCount,
	}, nil
}

// loadDocuments loads the analysis's sources as engine input
func (s *analysisService) loadDocuments(ctx context.Context, analysisID string) ([]domain.DocumentRecord, error) {
	sources, err := s.sourceStore.ListByAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.DocumentRecord, 0, len(sources))
	for _, source := range sources {
		docs = append(docs, source.ToRecord())
	}
	return docs, nil
}

// audit records an audit entry, best effort
func (s *analysisService) audit(ctx context.Context, action domain.AuditAction, entityID, userID, description string) {
	_ = s.auditStore.Record(ctx, &domain.AuditEntry{
		ID:          generateID(),
		Action:      action,
		EntityType:  "analysis",
		EntityID:    entityID,
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now(),
	})
}
