// Package cluster implements the geographic clusterer (spec §4.2): an
// agglomerative, diameter-bounded partition of sites. The teacher has no
// clustering code of its own, so this package is new, written in the
// teacher's multi-phase function style (seed -> iterative merge -> finalize
// numbering, the same shape as internal/routing/distance_minimizer.go's
// phase1/phase2/phase3/phase4 structure).
package cluster

import (
	"sort"

	"fieldplanner/internal/geo"
)

// Diameter presets recognized by the spec (miles).
const (
	PresetTight  = 50.0
	PresetMedium = 75.0
	PresetNormal = 100.0
	PresetLoose  = 150.0
)

// Sited is anything with an id and coordinates — generalized so callers can
// cluster their own site type without this package depending on models.
type Sited interface {
	SiteID() string
	Coords() geo.Point
}

// Cluster is one output partition: a stable id and its member site ids.
type Cluster struct {
	ID      int
	SiteIDs []string
}

type workingCluster struct {
	id      int
	members []Sited
}

// Partition produces cluster_id -> sites such that every cluster's bounding
// diameter is <= maxDiameterMiles, per spec §4.2's agglomerative-merge
// algorithm:
//  1. Seed: one cluster per site.
//  2. Repeatedly merge the pair of clusters whose merged diameter is
//     smallest and <= the cap; ties broken by smaller centroid distance.
//  3. Terminate when no legal merge remains.
//
// The trivial one-site-per-cluster partition always satisfies the bound,
// so Partition never fails.
func Partition(sites []Sited, maxDiameterMiles float64) []Cluster {
	working := make([]*workingCluster, len(sites))
	for i, s := range sites {
		working[i] = &workingCluster{id: i, members: []Sited{s}}
	}

	for {
		bestI, bestJ, bestDiameter, bestCentroidDist, found := findBestMerge(working, maxDiameterMiles)
		if !found {
			break
		}
		_ = bestDiameter
		_ = bestCentroidDist
		working[bestI].members = append(working[bestI].members, working[bestJ].members...)
		working = append(working[:bestJ], working[bestJ+1:]...)
	}

	return finalize(working)
}

// findBestMerge scans all cluster pairs and returns the indices of the
// pair whose merged diameter is smallest and within the cap, breaking ties
// by smaller centroid distance (spec §4.2 step 2).
func findBestMerge(working []*workingCluster, maxDiameterMiles float64) (bestI, bestJ int, bestDiameter, bestCentroidDist float64, found bool) {
	bestDiameter = maxDiameterMiles + 1
	bestCentroidDist = -1

	for i := 0; i < len(working); i++ {
		for j := i + 1; j < len(working); j++ {
			merged := mergedPoints(working[i], working[j])
			diameter := geo.BoundingDiameter(merged)
			if diameter > maxDiameterMiles {
				continue
			}

			centroidDist := geo.DistanceMiles(centroidOf(working[i]), centroidOf(working[j]))

			better := diameter < bestDiameter ||
				(diameter == bestDiameter && centroidDist < bestCentroidDist)

			if !found || better {
				bestI, bestJ, bestDiameter, bestCentroidDist, found = i, j, diameter, centroidDist, true
			}
		}
	}
	return
}

func mergedPoints(a, b *workingCluster) []geo.Point {
	points := make([]geo.Point, 0, len(a.members)+len(b.members))
	for _, m := range a.members {
		points = append(points, m.Coords())
	}
	for _, m := range b.members {
		points = append(points, m.Coords())
	}
	return points
}

func centroidOf(c *workingCluster) geo.Point {
	points := make([]geo.Point, len(c.members))
	for i, m := range c.members {
		points[i] = m.Coords()
	}
	return geo.Centroid(points)
}

// finalize assigns stable cluster_id numbering in decreasing cluster-size
// order, ties broken by smallest centroid-latitude then longitude (spec
// §4.2 "Output").
func finalize(working []*workingCluster) []Cluster {
	sort.SliceStable(working, func(i, j int) bool {
		si, sj := len(working[i].members), len(working[j].members)
		if si != sj {
			return si > sj
		}
		ci, cj := centroidOf(working[i]), centroidOf(working[j])
		if ci.Lat != cj.Lat {
			return ci.Lat < cj.Lat
		}
		return ci.Lng < cj.Lng
	})

	clusters := make([]Cluster, len(working))
	for i, w := range working {
		ids := make([]string, len(w.members))
		for j, m := range w.members {
			ids[j] = m.SiteID()
		}
		clusters[i] = Cluster{ID: i, SiteIDs: ids}
	}
	return clusters
}
