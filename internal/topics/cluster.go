package topics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// cosineSimilarity between two vectors; zero when either has no magnitude.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	dotProduct := 0.0
	normA := 0.0
	normB := 0.0

	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func l2Normalize(vectors [][]float64) [][]float64 {
	normalized := make([][]float64, len(vectors))
	for i, vec := range vectors {
		norm := 0.0
		for _, val := range vec {
			norm += val * val
		}
		norm = math.Sqrt(norm)

		out := make([]float64, len(vec))
		if norm > 0 {
			for j, val := range vec {
				out[j] = val / norm
			}
		} else {
			copy(out, vec)
		}
		normalized[i] = out
	}
	return normalized
}

// calculateOptimalEps derives a DBSCAN eps from the k-th nearest neighbor
// distance distribution, with percentile and bounds adapted to batch size.
func calculateOptimalEps(vectors [][]float64, k int) float64 {
	n := len(vectors)
	kDistances := make([]float64, n)

	for i := range n {
		distances := make([]float64, 0, n-1)
		for j := range n {
			if i != j {
				// Cosine distance for normalized vectors
				distances = append(distances, 1.0-cosineSimilarity(vectors[i], vectors[j]))
			}
		}

		sort.Float64s(distances)
		if k-1 < len(distances) {
			kDistances[i] = distances[k-1]
		} else if len(distances) > 0 {
			kDistances[i] = distances[len(distances)-1]
		}
	}

	sort.Float64s(kDistances)

	// Smaller batches need a higher percentile to avoid over-fragmentation.
	var percentile float64
	switch {
	case n < 20:
		percentile = 0.3
	case n < 50:
		percentile = 0.25
	default:
		percentile = 0.15
	}

	elbowIdx := int(float64(n) * percentile)
	if elbowIdx >= n {
		elbowIdx = n - 1
	}
	if elbowIdx < 1 {
		elbowIdx = 1
	}
	eps := kDistances[elbowIdx]

	mean := 0.0
	for _, d := range kDistances {
		mean += d
	}
	mean /= float64(len(kDistances))

	stdDev := 0.0
	for _, d := range kDistances {
		diff := d - mean
		stdDev += diff * diff
	}
	stdDev = math.Sqrt(stdDev / float64(len(kDistances)))

	minEps := math.Max(0.03, mean-2*stdDev)
	maxEps := math.Min(0.35, mean+stdDev)

	if eps > maxEps {
		eps = maxEps
	} else if eps < minEps {
		eps = minEps
	}
	return eps
}

func findNeighbors(vectors [][]float64, pointIdx int, eps float64) []int {
	var neighbors []int
	for i, other := range vectors {
		if i != pointIdx {
			if 1.0-cosineSimilarity(vectors[pointIdx], other) <= eps {
				neighbors = append(neighbors, i)
			}
		}
	}
	return neighbors
}

// dbscan clusters by density over cosine distance. Returns member index lists
// per cluster, largest first; noise points are excluded entirely.
func dbscan(vectors [][]float64, eps float64, minPts int) [][]int {
	n := len(vectors)
	visited := make([]bool, n)
	clusterID := make([]int, n)
	for i := range clusterID {
		clusterID[i] = -1 // noise/unassigned
	}

	currentCluster := 0
	for i := range n {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := findNeighbors(vectors, i, eps)
		if len(neighbors)+1 < minPts {
			continue
		}

		clusterID[i] = currentCluster
		for j := 0; j < len(neighbors); j++ {
			nIdx := neighbors[j]

			if !visited[nIdx] {
				visited[nIdx] = true
				newNeighbors := findNeighbors(vectors, nIdx, eps)
				if len(newNeighbors)+1 >= minPts {
					for _, candidate := range newNeighbors {
						alreadyIn := false
						for _, existing := range neighbors {
							if existing == candidate {
								alreadyIn = true
								break
							}
						}
						if !alreadyIn {
							neighbors = append(neighbors, candidate)
						}
					}
				}
			}

			if clusterID[nIdx] == -1 {
				clusterID[nIdx] = currentCluster
			}
		}
		currentCluster++
	}

	byCluster := make(map[int][]int)
	for i, cid := range clusterID {
		if cid >= 0 {
			byCluster[cid] = append(byCluster[cid], i)
		}
	}

	clusters := make([][]int, 0, len(byCluster))
	for _, members := range byCluster {
		clusters = append(clusters, members)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})
	return clusters
}

// kmeans partitions vectors into k clusters with k-means++ initialization and
// cosine-similarity assignment.
func kmeans(vectors [][]float64, k int, rng *rand.Rand) ([][]int, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no vectors to cluster")
	}
	if k > len(vectors) {
		k = len(vectors)
	}
	if k < 1 {
		k = 1
	}

	dim := len(vectors[0])
	data := mat.NewDense(len(vectors), dim, nil)
	for i, vec := range vectors {
		data.SetRow(i, vec)
	}

	centroids := initializeCentroidsKMeansPlusPlus(data, k, rng)

	const maxIterations = 100
	const tolerance = 1e-4

	assignments := make([]int, len(vectors))
	for iteration := 0; iteration < maxIterations; iteration++ {
		newAssignments := assignPointsToClusters(data, centroids)

		converged := true
		for i := range assignments {
			if assignments[i] != newAssignments[i] {
				converged = false
				break
			}
		}
		assignments = newAssignments
		if converged && iteration > 0 {
			break
		}

		newCentroids := updateCentroids(data, assignments, k)
		change := centroidChange(centroids, newCentroids)
		centroids = newCentroids
		if change < tolerance {
			break
		}
	}

	byCluster := make(map[int][]int)
	for i, cid := range assignments {
		byCluster[cid] = append(byCluster[cid], i)
	}

	clusters := make([][]int, 0, len(byCluster))
	for _, members := range byCluster {
		clusters = append(clusters, members)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})
	return clusters, nil
}

func initializeCentroidsKMeansPlusPlus(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, dim := data.Dims()
	centroids := mat.NewDense(k, dim, nil)

	first := rng.Intn(n)
	centroids.SetRow(0, data.RawRowView(first))

	for c := 1; c < k; c++ {
		distances := make([]float64, n)
		total := 0.0
		for i := 0; i < n; i++ {
			point := data.RawRowView(i)
			best := math.Inf(1)
			for existing := 0; existing < c; existing++ {
				dist := 1.0 - cosineSimilarity(point, centroids.RawRowView(existing))
				if dist < best {
					best = dist
				}
			}
			distances[i] = best * best
			total += distances[i]
		}

		if total == 0 {
			centroids.SetRow(c, data.RawRowView(rng.Intn(n)))
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := n - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids.SetRow(c, data.RawRowView(chosen))
	}
	return centroids
}

func assignPointsToClusters(data, centroids *mat.Dense) []int {
	n, _ := data.Dims()
	k, _ := centroids.Dims()

	assignments := make([]int, n)
	for i := 0; i < n; i++ {
		point := data.RawRowView(i)
		bestCluster := 0
		bestSim := math.Inf(-1)
		for c := 0; c < k; c++ {
			sim := cosineSimilarity(point, centroids.RawRowView(c))
			if sim > bestSim {
				bestSim = sim
				bestCluster = c
			}
		}
		assignments[i] = bestCluster
	}
	return assignments
}

func updateCentroids(data *mat.Dense, assignments []int, k int) *mat.Dense {
	n, dim := data.Dims()
	centroids := mat.NewDense(k, dim, nil)
	counts := make([]int, k)

	for i := 0; i < n; i++ {
		cid := assignments[i]
		counts[cid]++
		row := data.RawRowView(i)
		for j := 0; j < dim; j++ {
			centroids.Set(cid, j, centroids.At(cid, j)+row[j])
		}
	}

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		for j := 0; j < dim; j++ {
			centroids.Set(c, j, centroids.At(c, j)/float64(counts[c]))
		}
	}
	return centroids
}

func centroidChange(oldCentroids, newCentroids *mat.Dense) float64 {
	k, _ := oldCentroids.Dims()
	change := 0.0
	for c := 0; c < k; c++ {
		change += 1.0 - cosineSimilarity(oldCentroids.RawRowView(c), newCentroids.RawRowView(c))
	}
	return change / float64(k)
}
