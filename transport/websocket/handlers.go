package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/usecase"
)

var errMoveRequired = errors.New("move is required")

func (that *Server) handleCreate(ctx context.Context, c *client, payload Payload) (ResponsePayload, error) {
	kind, err := entity.ParseKind(payload.Kind)
	if err != nil {
		return ResponsePayload{}, err
	}

	snapshot, err := that.game.CreateSession(ctx, usecase.CreateRequest{
		Key:          payload.Key,
		Kind:         kind,
		Participants: payload.Participants,
		Timeout:      time.Duration(payload.TimeoutSeconds) * time.Second,
		Word:         payload.Word,
	})
	if err != nil {
		return ResponsePayload{}, err
	}

	that.subscribe(c, snapshot.Key)

	return ResponsePayload{Snapshot: snapshot}, nil
}

func (that *Server) handleJoin(ctx context.Context, c *client, payload Payload) (ResponsePayload, error) {
	snapshot, err := that.game.JoinSession(ctx, payload.Key, payload.Participant)
	if err != nil {
		return ResponsePayload{}, err
	}

	that.subscribe(c, snapshot.Key)
	that.publish(snapshot.Key, c, actionUpdate, ResponsePayload{Snapshot: snapshot})

	return ResponsePayload{Snapshot: snapshot}, nil
}

func (that *Server) handleMove(ctx context.Context, c *client, payload Payload) (ResponsePayload, error) {
	if payload.Move == nil {
		return ResponsePayload{}, errMoveRequired
	}

	result, err := that.game.SubmitMove(ctx, entity.Move{
		SessionKey:  payload.Key,
		Participant: payload.Participant,
		Payload:     *payload.Move,
	})

	// the move was applied, only the ledger call failed
	if result != nil && errors.Is(err, apperror.ErrRewardDelivery) {
		return ResponsePayload{Snapshot: &result.Snapshot, Outcome: result.Outcome, Warning: err.Error()}, nil
	}

	if err != nil {
		return ResponsePayload{}, err
	}

	if result.Outcome == nil {
		that.subscribe(c, payload.Key)
		that.publish(payload.Key, c, actionUpdate, ResponsePayload{Snapshot: &result.Snapshot})
	}

	return ResponsePayload{Snapshot: &result.Snapshot, Outcome: result.Outcome}, nil
}

func (that *Server) handleGet(ctx context.Context, c *client, payload Payload) (ResponsePayload, error) {
	snapshot, err := that.game.GetSnapshot(ctx, payload.Key)
	if err != nil {
		return ResponsePayload{}, err
	}

	that.subscribe(c, snapshot.Key)

	return ResponsePayload{Snapshot: snapshot}, nil
}

func (that *Server) handleAbandon(ctx context.Context, _ *client, payload Payload) (ResponsePayload, error) {
	if err := that.game.Abandon(ctx, payload.Key); err != nil {
		return ResponsePayload{}, err
	}

	return ResponsePayload{}, nil
}

func errorCode(err error) string {
	if errors.Is(err, errMoveRequired) {
		return "bad_request"
	}

	return apperror.Code(err)
}
