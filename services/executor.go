package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"content-engine/models"
	"content-engine/publishers"
	"content-engine/storage"
)

// Executor drives pieces through the publish critical section. Each publish
// starts with an atomic pending -> processing claim, calls the platform
// exactly once, then lands on completed or failed.
type Executor struct {
	Store    *storage.Store
	Registry *publishers.Registry
	Logger   *zap.Logger
}

// NewExecutor creates the publication executor.
func NewExecutor(store *storage.Store, registry *publishers.Registry, logger *zap.Logger) *Executor {
	return &Executor{Store: store, Registry: registry, Logger: logger}
}

// PostNow publishes one pending piece immediately. The claim guarantees that
// concurrent callers cannot publish the same piece twice; the loser gets an
// *models.InvalidStateTransitionError.
func (e *Executor) PostNow(ctx context.Context, pieceID string) (*models.ContentPiece, error) {
	piece, err := e.Store.Pieces.ClaimProcessing(ctx, pieceID)
	if err != nil {
		return nil, err
	}

	pub, ok := e.Registry.For(piece.Platform)
	if !ok {
		return e.markFailed(ctx, piece, &PublishError{Platform: piece.Platform, Reason: ErrNoPublisher.Error()})
	}

	result, err := pub.Publish(ctx, piece)
	if err != nil {
		return e.markFailed(ctx, piece, &PublishError{Platform: piece.Platform, Reason: err.Error()})
	}
	if !result.Success {
		reason := result.Error
		if reason == "" {
			reason = "platform rejected the post"
		}
		return e.markFailed(ctx, piece, &PublishError{Platform: piece.Platform, Reason: reason})
	}
	if result.PlatformPostID == "" {
		return e.markFailed(ctx, piece, &PublishError{Platform: piece.Platform, Reason: "platform returned no post id"})
	}

	if err := models.ValidateTransition(piece.Status, models.StatusCompleted); err != nil {
		return nil, err
	}
	now := time.Now()
	piece.Status = models.StatusCompleted
	piece.PostedAt = &now
	piece.PlatformPostID = result.PlatformPostID
	piece.PlatformPostURL = result.PlatformPostURL
	piece.ErrorMessage = ""
	if err := e.Store.Pieces.Update(ctx, piece); err != nil {
		return nil, err
	}

	e.Logger.Info("Piece published",
		zap.String("piece_id", piece.ID),
		zap.String("platform", string(piece.Platform)),
		zap.String("platform_post_id", piece.PlatformPostID))
	return piece, nil
}

// markFailed lands a claimed piece on failed with the publish error recorded.
// The returned error is the publish error, not the store's.
func (e *Executor) markFailed(ctx context.Context, piece *models.ContentPiece, pubErr *PublishError) (*models.ContentPiece, error) {
	if err := models.ValidateTransition(piece.Status, models.StatusFailed); err != nil {
		return nil, err
	}
	piece.Status = models.StatusFailed
	piece.ErrorMessage = pubErr.Error()
	if err := e.Store.Pieces.Update(ctx, piece); err != nil {
		return nil, err
	}

	e.Logger.Error("Publish failed",
		zap.String("piece_id", piece.ID),
		zap.String("platform", string(piece.Platform)),
		zap.String("reason", pubErr.Reason))
	return piece, pubErr
}

// RetryFailed puts a failed piece back into pending and clears its error so
// it can be scheduled or posted again.
func (e *Executor) RetryFailed(ctx context.Context, pieceID string) (*models.ContentPiece, error) {
	piece, err := e.Store.Pieces.Get(ctx, pieceID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTransition(piece.Status, models.StatusPending); err != nil {
		return nil, err
	}
	piece.Status = models.StatusPending
	piece.ErrorMessage = ""
	if err := e.Store.Pieces.Update(ctx, piece); err != nil {
		return nil, err
	}
	e.Logger.Info("Failed piece reset to pending", zap.String("piece_id", piece.ID))
	return piece, nil
}

// Archive moves a completed or failed piece to archived, removing it from
// all automatic flows.
func (e *Executor) Archive(ctx context.Context, pieceID string) (*models.ContentPiece, error) {
	piece, err := e.Store.Pieces.Get(ctx, pieceID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTransition(piece.Status, models.StatusArchived); err != nil {
		return nil, err
	}
	piece.Status = models.StatusArchived
	if err := e.Store.Pieces.Update(ctx, piece); err != nil {
		return nil, err
	}
	e.Logger.Info("Piece archived", zap.String("piece_id", piece.ID))
	return piece, nil
}
