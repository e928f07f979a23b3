package tracing

import (
	"go.opentelemetry.io/otel/attribute"

	"headsup-hq/headsup/pkg/engine"
)

// Span attribute keys.
const (
	AttrEngine     = "headsup.engine"
	AttrEngineName = "headsup.engine.name"
	AttrSearchID   = "headsup.search.id"
	AttrMode       = "headsup.search.mode"
	AttrBestMove   = "headsup.search.bestmove"
	AttrPonder     = "headsup.search.ponder"
	AttrInfoLines  = "headsup.search.info_lines"
	AttrOutcome    = "headsup.search.outcome"
	AttrFEN        = "chess.fen"
	AttrFullMove   = "chess.fullmove"
	AttrMaterial   = "chess.material"
)

func startAttributes(r engine.SearchReport) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSearchID, r.ID),
		attribute.String(AttrEngine, r.Engine),
		attribute.String(AttrEngineName, r.EngineName),
		attribute.String(AttrMode, r.Mode),
		attribute.String(AttrFEN, r.FEN),
		attribute.Int(AttrFullMove, r.FullMove),
		attribute.Int(AttrMaterial, r.Material),
	}
}

func finishAttributes(r engine.SearchReport) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrBestMove, r.BestMove),
		attribute.Int(AttrInfoLines, r.InfoLines),
		attribute.String(AttrOutcome, string(r.Outcome)),
	}
	if r.Ponder != "" {
		attrs = append(attrs, attribute.String(AttrPonder, r.Ponder))
	}
	return attrs
}
