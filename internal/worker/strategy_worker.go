package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/model"
	"github.com/brandforge/api/internal/service"
	"github.com/brandforge/api/internal/store"
	ws "github.com/brandforge/api/internal/websocket"
)

// StrategyWorker owns the job lifecycle. It sequences the pipeline stages,
// persists an artifact at every stage boundary, and advances the state
// machine. Per-call and per-stage provider failures are recovered into the
// data; only errors that stop the state machine itself (job record gone,
// storage write refused) fail the job.
type StrategyWorker struct {
	jobs         store.JobStore
	storage      client.StorageClient
	research     *service.ResearchService
	creative     *service.CreativeResearchService
	consolidator *service.ConsolidatorService
	analysis     *service.AnalysisService
	consensus    *service.ConsensusService
	presentation *service.PresentationService
	hub          *ws.Hub
}

// NewStrategyWorker creates the pipeline worker. hub may be nil when no
// WebSocket surface is running.
func NewStrategyWorker(
	jobs store.JobStore,
	storage client.StorageClient,
	research *service.ResearchService,
	creative *service.CreativeResearchService,
	consolidator *service.ConsolidatorService,
	analysis *service.AnalysisService,
	consensus *service.ConsensusService,
	presentation *service.PresentationService,
	hub *ws.Hub,
) *StrategyWorker {
	return &StrategyWorker{
		jobs:         jobs,
		storage:      storage,
		research:     research,
		creative:     creative,
		consolidator: consolidator,
		analysis:     analysis,
		consensus:    consensus,
		presentation: presentation,
		hub:          hub,
	}
}

// ProcessTask handles one strategy:process task. A malformed payload is a
// queue-level error and is returned to asynq; a pipeline failure marks the
// job failed and returns nil so asynq does not blindly re-run a
// deterministically failing job.
func (w *StrategyWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.StrategyJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := payload.JobID
	log.Printf("[Job %s] Starting strategy pipeline", jobID)

	if _, err := w.jobs.Get(ctx, jobID); err != nil {
		return fmt.Errorf("job %s not loadable: %w", jobID, err)
	}

	if err := w.runPipeline(ctx, jobID, &payload.Questionnaire); err != nil {
		w.failJob(ctx, jobID, err)
		return nil
	}

	log.Printf("[Job %s] Pipeline complete", jobID)
	return nil
}

func (w *StrategyWorker) runPipeline(ctx context.Context, jobID string, q *model.Questionnaire) error {
	job, err := w.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}

	// A redelivered task resumes at the stage the job was in when the
	// previous run died, so a crash costs at most one stage of redone
	// work. Stage entry statuses are written only after the previous
	// stage's artifacts are persisted, which makes the resume inputs
	// reloadable from storage.
	switch job.Status {
	case model.JobStatusCompleted:
		log.Printf("[Job %s] Already completed, nothing to redo", jobID)
		return nil
	case model.JobStatusFailed:
		log.Printf("[Job %s] Already failed, not re-running", jobID)
		return nil
	}
	resumeAnalysis := job.Status == model.JobStatusAnalyzing
	resumeConsensus := job.Status == model.JobStatusConsensus

	var (
		consolidated *model.ConsolidatedResearch
		triple       *model.AnalysisTriple
	)

	if !resumeAnalysis && !resumeConsensus {
		// Stage 1: research. The status write lands before the first
		// network call so a crash mid-stage is observable as "stuck in
		// researching".
		if err := w.transition(ctx, jobID, model.JobStatusResearching, "research"); err != nil {
			return err
		}

		log.Printf("[Job %s] Starting dual research fan-out", jobID)
		var (
			market   model.ResearchResult
			creative model.ResearchResult
			wg       sync.WaitGroup
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			market = w.research.Conduct(ctx, q)
		}()
		go func() {
			defer wg.Done()
			creative = w.creative.Conduct(ctx, q)
		}()
		wg.Wait()

		if err := w.putArtifact(ctx, jobID, model.ArtifactMarketResearch, market); err != nil {
			return err
		}
		if err := w.putArtifact(ctx, jobID, model.ArtifactCreativeResearch, creative); err != nil {
			return err
		}

		log.Printf("[Job %s] Consolidating research", jobID)
		consolidated = w.consolidator.Consolidate(ctx, market, creative)
		if err := w.putArtifact(ctx, jobID, model.ArtifactConsolidated, consolidated); err != nil {
			return err
		}
	}

	if !resumeConsensus {
		// Stage 2: analysis.
		if err := w.transition(ctx, jobID, model.JobStatusAnalyzing, "analysis"); err != nil {
			return err
		}

		if consolidated == nil {
			log.Printf("[Job %s] Resuming at analysis, reloading consolidated research", jobID)
			consolidated = &model.ConsolidatedResearch{}
			if err := w.getArtifact(ctx, jobID, model.ArtifactConsolidated, consolidated); err != nil {
				return err
			}
		}

		triple = w.analysis.RunTripleAnalysis(ctx, q, consolidated)
		if err := w.putArtifact(ctx, jobID, model.ArtifactAnalysisTriple, triple); err != nil {
			return err
		}
	}

	// Stage 3: consensus.
	if err := w.transition(ctx, jobID, model.JobStatusConsensus, "consensus"); err != nil {
		return err
	}

	if triple == nil {
		log.Printf("[Job %s] Resuming at consensus, reloading analysis triple", jobID)
		triple = &model.AnalysisTriple{}
		if err := w.getArtifact(ctx, jobID, model.ArtifactAnalysisTriple, triple); err != nil {
			return err
		}
	}

	strategy := w.consensus.Generate(ctx, triple)
	if err := w.putArtifact(ctx, jobID, model.ArtifactAnalysis, strategy); err != nil {
		return err
	}

	// Stage 4: document hand-off, best-effort. A missing presentation
	// degrades the download endpoint, not the job.
	w.produceDocument(ctx, jobID, q, strategy)

	if err := w.transition(ctx, jobID, model.JobStatusCompleted, "done"); err != nil {
		return err
	}

	if w.hub != nil {
		w.hub.BroadcastComplete(jobID, strategy)
	}
	return nil
}

func (w *StrategyWorker) produceDocument(ctx context.Context, jobID string, q *model.Questionnaire, strategy *model.ConsensusStrategy) {
	deck, err := w.presentation.StructureDeck(ctx, q, strategy)
	if err != nil {
		log.Printf("[Job %s] Deck structuring failed: %v", jobID, err)
		return
	}
	if err := w.putArtifact(ctx, jobID, model.ArtifactSlides, deck); err != nil {
		log.Printf("[Job %s] Failed to persist slides: %v", jobID, err)
		return
	}

	doc, err := w.presentation.RenderDeck(ctx, deck)
	if err != nil {
		log.Printf("[Job %s] Document rendering skipped: %v", jobID, err)
		return
	}

	key := model.ArtifactKey(jobID, model.ArtifactPresentation)
	if err := w.storage.Put(ctx, key, doc, "application/vnd.openxmlformats-officedocument.presentationml.presentation"); err != nil {
		log.Printf("[Job %s] Failed to persist presentation: %v", jobID, err)
		return
	}
	log.Printf("[Job %s] Presentation saved to %s", jobID, key)
}

// transition advances the state machine and announces the change. A
// re-delivered task may find the job already in the stage it crashed in,
// so reaching the current status is a no-op, not an illegal edge. A
// rejected edge or an unreachable job store halts the pipeline.
func (w *StrategyWorker) transition(ctx context.Context, jobID string, status model.JobStatus, stage string) error {
	job, err := w.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if job.Status == status {
		return nil
	}
	if err := w.jobs.SetStatus(ctx, jobID, status); err != nil {
		return fmt.Errorf("failed to set status %s: %w", status, err)
	}
	if w.hub != nil {
		w.hub.BroadcastStatus(jobID, status, stage)
	}
	return nil
}

// putArtifact persists a stage boundary artifact. These writes are required:
// a refused write is fatal for the job.
func (w *StrategyWorker) putArtifact(ctx context.Context, jobID, name string, v interface{}) error {
	key := model.ArtifactKey(jobID, name)
	if err := w.storage.PutJSON(ctx, key, v); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// getArtifact reloads a stage boundary artifact when a resumed run needs the
// previous stage's output. A missing or unreadable artifact here is fatal.
func (w *StrategyWorker) getArtifact(ctx context.Context, jobID, name string, out interface{}) error {
	key := model.ArtifactKey(jobID, name)
	if err := w.storage.GetJSON(ctx, key, out); err != nil {
		return fmt.Errorf("failed to reload %s: %w", key, err)
	}
	return nil
}

func (w *StrategyWorker) failJob(ctx context.Context, jobID string, cause error) {
	log.Printf("[Job %s] Pipeline FAILED: %v", jobID, cause)
	if err := w.jobs.SetFailed(ctx, jobID, cause.Error()); err != nil {
		log.Printf("[Job %s] Failed to mark job as failed: %v", jobID, err)
	}
	if w.hub != nil {
		w.hub.BroadcastError(jobID, "PIPELINE_FAILED", cause.Error())
	}
}
