// Copyright 2026 FlowGPU Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pipeline provides the public API for running compute stages
// over GPU image buffers: the opaque Stage boundary, a frame-loop
// runner, and a built-in texture-sampled resampling stage.
package pipeline

import (
	"github.com/flowgpu/flowgpu/internal/pipeline"
)

// Type aliases for public API

// Stage is a compute stage operating on device buffers.
type Stage = pipeline.Stage

// Sink receives each downloaded result frame.
type Sink = pipeline.Sink

// Resample rescales Gray8 input into normalized float32 output through
// a hardware texture.
type Resample = pipeline.Resample

// Constructors and the frame loop.
var (
	// NewResample creates a resampling stage with the given filter mode.
	NewResample = pipeline.NewResample
	// Run drives frames from a source through a stage until exhausted.
	Run = pipeline.Run
)
