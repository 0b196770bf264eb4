// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package analyzer

import (
	"math"
	"math/rand"
)

// K-Means parameters. The seed is fixed so two runs over identical input
// produce identical label assignments.
const (
	kmeansSeed      = 42
	kmeansRestarts  = 10
	kmeansMaxIter   = 100
	kmeansTolerance = 1e-4
)

// kmeans partitions the points into k clusters and returns one label per
// point. It runs kmeansRestarts seeded initializations and keeps the
// assignment with the lowest inertia (sum of squared distances to the
// assigned centroid).
func kmeans(points [][]float64, k int) []int {
	if len(points) == 0 || k < 1 {
		return nil
	}
	if k == 1 {
		return make([]int, len(points))
	}

	rng := rand.New(rand.NewSource(kmeansSeed))

	bestInertia := math.Inf(1)
	var bestLabels []int
	for restart := 0; restart < kmeansRestarts; restart++ {
		labels, inertia := kmeansOnce(points, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
		}
	}
	return bestLabels
}

// kmeansOnce runs a single K-Means pass: Forgy initialization from distinct
// points, then alternating assignment and centroid-update steps until the
// centroids stop moving or the iteration cap is hit.
func kmeansOnce(points [][]float64, k int, rng *rand.Rand) ([]int, float64) {
	dim := len(points[0])

	// Initialize centroids from k distinct points.
	perm := rng.Perm(len(points))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), points[perm[i]]...)
	}

	labels := make([]int, len(points))
	for iter := 0; iter < kmeansMaxIter; iter++ {
		// Assignment step.
		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for j, c := range centroids {
				if d := squaredDistance(p, c); d < bestDist {
					best, bestDist = j, d
				}
			}
			labels[i] = best
		}

		// Update step.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, dim)
		}
		for i, p := range points {
			counts[labels[i]]++
			for j, v := range p {
				sums[labels[i]][j] += v
			}
		}

		converged := true
		for i := range centroids {
			if counts[i] == 0 {
				// Empty cluster: reseed from a random point.
				centroids[i] = append([]float64(nil), points[rng.Intn(len(points))]...)
				converged = false
				continue
			}
			moved := 0.0
			for j := range sums[i] {
				next := sums[i][j] / float64(counts[i])
				moved += math.Abs(next - centroids[i][j])
				centroids[i][j] = next
			}
			if moved > kmeansTolerance {
				converged = false
			}
		}
		if converged {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += squaredDistance(p, centroids[labels[i]])
	}
	return labels, inertia
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
