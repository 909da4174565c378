// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package metrics

import "go.opentelemetry.io/otel"

// Tracer is the package-wide tracer for the CAT and spaced-repetition
// engines, named the way the teacher names its own package-level tracers
// (e.g. "aleutian.agent.routing.prefilter").
var Tracer = otel.Tracer("vocabcat")

// Span name constants so callers never retype these strings.
const (
	SpanSelectNextItem = "cat.select_next_item"
	SpanUpdatePosterior = "cat.update_posterior"
	SpanTerminateSession = "cat.terminate"
	SpanLearnNextCard    = "learn.next_card"
	SpanLearnSM2Update   = "learn.sm2_update"
)
