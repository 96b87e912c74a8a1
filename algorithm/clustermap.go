package algorithm

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/meshrecon/attrmap"
	"github.com/hupe1980/meshrecon/handle"
)

// ClusterBiMap partitions handles into clusters and answers both
// "which members does a cluster have" and "which cluster owns a handle".
//
// Members are kept in a roaring bitmap per cluster, so iteration yields them
// in ascending order. A handle belongs to at most one cluster.
type ClusterBiMap[H handle.Index] struct {
	clusters *attrmap.StableVector[handle.ClusterHandle, *roaring.Bitmap]
	owner    *attrmap.HashMap[H, handle.ClusterHandle]
}

// NewClusterBiMap creates an empty ClusterBiMap.
func NewClusterBiMap[H handle.Index]() *ClusterBiMap[H] {
	return &ClusterBiMap[H]{
		clusters: attrmap.NewStableVector[handle.ClusterHandle, *roaring.Bitmap](0),
		owner:    attrmap.NewHashMap[H, handle.ClusterHandle](),
	}
}

// CreateCluster adds an empty cluster.
func (cm *ClusterBiMap[H]) CreateCluster() handle.ClusterHandle {
	return cm.clusters.Push(roaring.New())
}

// AddToCluster moves h into c, removing it from its previous cluster. It
// reports false and leaves h untouched when c is not a live cluster.
func (cm *ClusterBiMap[H]) AddToCluster(c handle.ClusterHandle, h H) bool {
	if !cm.clusters.Contains(c) {
		return false
	}
	if prev, ok := cm.owner.Insert(h, c); ok {
		if prev == c {
			return true
		}
		cm.bitmap(prev).Remove(uint32(h))
	}
	cm.bitmap(c).Add(uint32(h))
	return true
}

func (cm *ClusterBiMap[H]) bitmap(c handle.ClusterHandle) *roaring.Bitmap {
	return *cm.clusters.Ref(c)
}

// Remove drops h from whatever cluster owns it. It reports whether h was
// clustered.
func (cm *ClusterBiMap[H]) Remove(h H) bool {
	c, ok := cm.owner.Remove(h)
	if ok {
		cm.bitmap(c).Remove(uint32(h))
	}
	return ok
}

// RemoveCluster deletes c and unassigns all of its members.
func (cm *ClusterBiMap[H]) RemoveCluster(c handle.ClusterHandle) {
	bm, ok := cm.clusters.Get(c)
	if !ok {
		return
	}
	bm.Iterate(func(x uint32) bool {
		cm.owner.Remove(H(x))
		return true
	})
	cm.clusters.Erase(c)
}

// ClusterOf returns the cluster owning h.
func (cm *ClusterBiMap[H]) ClusterOf(h H) (handle.ClusterHandle, bool) {
	return cm.owner.Get(h)
}

// Contains reports whether c is a live cluster.
func (cm *ClusterBiMap[H]) Contains(c handle.ClusterHandle) bool {
	return cm.clusters.Contains(c)
}

// Members yields the members of c in ascending order.
func (cm *ClusterBiMap[H]) Members(c handle.ClusterHandle) iter.Seq[H] {
	return func(yield func(H) bool) {
		bm, ok := cm.clusters.Get(c)
		if !ok {
			return
		}
		it := bm.Iterator()
		for it.HasNext() {
			if !yield(H(it.Next())) {
				return
			}
		}
	}
}

// Cluster returns the members of c in ascending order.
func (cm *ClusterBiMap[H]) Cluster(c handle.ClusterHandle) []H {
	bm, ok := cm.clusters.Get(c)
	if !ok {
		return nil
	}
	out := make([]H, 0, bm.GetCardinality())
	for h := range cm.Members(c) {
		out = append(out, h)
	}
	return out
}

// ClusterSize returns the number of members of c.
func (cm *ClusterBiMap[H]) ClusterSize(c handle.ClusterHandle) int {
	bm, ok := cm.clusters.Get(c)
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Clusters yields every live cluster in ascending order.
func (cm *ClusterBiMap[H]) Clusters() iter.Seq[handle.ClusterHandle] {
	return cm.clusters.Handles()
}

// NumClusters returns the number of live clusters.
func (cm *ClusterBiMap[H]) NumClusters() int { return cm.clusters.NumUsed() }

// NumMembers returns the number of clustered handles.
func (cm *ClusterBiMap[H]) NumMembers() int { return cm.owner.NumValues() }

// NextClusterIndex returns an upper bound for cluster handles, for sizing
// dense maps.
func (cm *ClusterBiMap[H]) NextClusterIndex() int { return int(cm.clusters.NextHandle()) }
