package world

import "container/heap"

// pathNode is one entry in the pathfinding frontier.
type pathNode struct {
	id   TowerId
	cost int
	index int
}

type pathQueue []*pathNode

func (q pathQueue) Len() int { return len(q) }
func (q pathQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	// Break ties lexicographically so pathfinding is fully deterministic
	// regardless of map iteration order.
	return q[i].id.Less(q[j].id)
}
func (q pathQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *pathQueue) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Passable reports whether a Force may legally traverse onto a tower while
// pathfinding; implementations typically forbid enemy-owned destructible
// towers or out-of-sensor-range cells.
type Passable func(TowerId) bool

// FindBestPath runs a uniform-cost search from source to destination,
// stepping only across grid-adjacent towers no farther apart than
// maxEdgeDistance and only onto towers passable accepts, and returns the
// resulting Path. ok is false if destination is unreachable under those
// constraints.
func FindBestPath(source, destination TowerId, maxEdgeDistance int, passable Passable) (Path, bool) {
	if source == destination {
		return Path{source}, true
	}
	cameFrom := map[TowerId]TowerId{}
	costSoFar := map[TowerId]int{source: 0}

	pq := &pathQueue{}
	heap.Init(pq)
	heap.Push(pq, &pathNode{id: source, cost: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pathNode)
		if cur.cost > costSoFar[cur.id] {
			continue
		}
		if cur.id == destination {
			return reconstructPath(cameFrom, source, destination), true
		}
		for _, next := range cur.id.Neighbors() {
			if cur.id.EdgeDistance(next) > maxEdgeDistance {
				continue
			}
			if next != destination && !passable(next) {
				continue
			}
			newCost := costSoFar[cur.id] + 1
			if old, ok := costSoFar[next]; ok && old <= newCost {
				continue
			}
			costSoFar[next] = newCost
			cameFrom[next] = cur.id
			heap.Push(pq, &pathNode{id: next, cost: newCost})
		}
	}
	return nil, false
}

// FindBestIncompletePath behaves like FindBestPath, but when destination is
// unreachable it returns the path to whichever explored tower is closest (by
// edge distance) to destination instead of failing outright. ok is false
// when no explored tower is closer to destination than source itself.
func FindBestIncompletePath(source, destination TowerId, maxEdgeDistance int, passable Passable) (Path, bool) {
	if p, ok := FindBestPath(source, destination, maxEdgeDistance, passable); ok {
		return p, true
	}
	cameFrom := map[TowerId]TowerId{}
	costSoFar := map[TowerId]int{source: 0}
	best := source
	bestDist := source.EdgeDistance(destination)

	pq := &pathQueue{}
	heap.Init(pq)
	heap.Push(pq, &pathNode{id: source, cost: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pathNode)
		if cur.cost > costSoFar[cur.id] {
			continue
		}
		if d := cur.id.EdgeDistance(destination); d < bestDist {
			bestDist, best = d, cur.id
		}
		for _, next := range cur.id.Neighbors() {
			if cur.id.EdgeDistance(next) > maxEdgeDistance || !passable(next) {
				continue
			}
			newCost := costSoFar[cur.id] + 1
			if old, ok := costSoFar[next]; ok && old <= newCost {
				continue
			}
			costSoFar[next] = newCost
			cameFrom[next] = cur.id
			heap.Push(pq, &pathNode{id: next, cost: newCost})
		}
	}
	if best == source {
		return nil, false
	}
	return reconstructPath(cameFrom, source, best), true
}

func reconstructPath(cameFrom map[TowerId]TowerId, source, destination TowerId) Path {
	rev := Path{destination}
	cur := destination
	for cur != source {
		cur = cameFrom[cur]
		rev = append(rev, cur)
	}
	out := make(Path, len(rev))
	for i, id := range rev {
		out[len(rev)-1-i] = id
	}
	return out
}
