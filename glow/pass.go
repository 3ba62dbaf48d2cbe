package glow

import (
	"runtime"
	"sync"
)

// forEachRow runs fn(y) for every row in [0, height) across a pool of
// worker goroutines and returns once all rows are done. workers <= 0 uses
// one worker per CPU.
func forEachRow(height, workers int, fn func(y int)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	rows := make(chan int, height)
	for y := 0; y < height; y++ {
		rows <- y
	}
	close(rows)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for y := range rows {
				fn(y)
			}
		}()
	}
	wg.Wait()
}

// ShadePass maps shader over every covered fragment in src and writes the
// resulting colors into dst. Uncovered pixels keep whatever dst already
// holds. Each fragment is shaded from its own inputs plus the shader's
// read-only uniforms, so rows can be split across any number of workers
// without changing the output.
func ShadePass(dst *ColorBuffer, src *FragmentBuffer, shader Shader, workers int) {
	forEachRow(src.Height, workers, func(y int) {
		base := y * src.Width
		for x := 0; x < src.Width; x++ {
			if !src.Covered[base+x] {
				continue
			}
			dst.Pixels[base+x] = shader.Fragment(src.Fragments[base+x])
		}
	})
}
