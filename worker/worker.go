// Package worker implements the per-node parallelism (C9): a
// goroutine-per-shard fan-out with a sync.WaitGroup join and
// thread-local result.Result accumulation merged at the join point,
// plus the narrow Transport interface behind which the driver/
// worker/agent roles of §5 and the epsilon-distance-join border
// exchange of §4.8 are expressed.
//
// The fan-out shape is grounded on lib.aim/framework.go's
// setVelocities(cells, nprocs, procNum, wg) shard-and-WaitGroup
// pattern and wrf2inmap/wrf2inmap.go's "go func(j int) { ... }"
// worker-pool loop; the concrete RPC transport is grounded on
// sr/distributed.go's Worker/NewWorker/Listen shape (rpc.Register,
// rpc.HandleHTTP, http.Serve). MPI process spawn/boot itself stays
// out of scope (spec §1) -- Transport is the seam a fleet
// bootstrapper would sit behind.
package worker

import (
	"net"
	"net/http"
	"net/rpc"
	"sync"

	"github.com/geodex/spatialquery/result"
	"github.com/geodex/spatialquery/status"
)

// Shard is one unit of partition-level parallel work: evaluate
// everything assigned to it and return a thread-local Result.
type Shard func() (result.Result, error)

// RunShards fans shards out across goroutines bounded by
// concurrency, merging every thread-local Result via Result.Merge
// (spec §5: "Query results are thread-local and merged by a
// user-defined reduction"). The first shard error observed is
// recorded and returned; per §5's cancellation rule, shards already
// in flight are allowed to finish (goroutines never suspend
// mid-partition) but their results are discarded once an error has
// been seen.
func RunShards(shards []Shard, empty result.Result, concurrency int) (result.Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		merged   = empty
		firstErr error
	)
	sem := make(chan struct{}, concurrency)
	for _, shard := range shards {
		shard := shard
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			r, err := shard()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if firstErr == nil {
				merged = merged.Merge(r)
			}
		}()
	}
	wg.Wait()
	return merged, firstErr
}

// Batch is the unit of work exchanged between nodes for the
// epsilon-distance-join border exchange (§4.8): the sending node's
// rank plus the record ids whose epsilon-expanded MBR reaches into
// the recipient's owned partitions.
type Batch struct {
	SourceRank uint32
	RecIDs     []uint64
}

// PairID is a matched (r,s) record-id pair carried back in a Reply.
type PairID struct {
	R, S uint64
}

// Reply carries one node's local evaluation of a Batch back to the
// sender.
type Reply struct {
	Pairs []PairID
}

// Transport is the narrow messaging seam Design Notes §9 calls for:
// "keep send_*/recv_* behind a narrow interface and treat the
// concrete transport as a collaborator." Any reliable point-to-point
// transport can satisfy it; RPCWorker below is the concrete net/rpc
// implementation.
type Transport interface {
	SendBatch(toRank uint32, b Batch) error
	RecvBatch() (Reply, error)
}

// RPCWorker is a net/rpc + net/http Transport, the same shape as
// sr/distributed.go's Worker/Listen: each node registers itself for
// RPC, serves HTTP, and dials peers by address to exchange Batches.
type RPCWorker struct {
	Rank  uint32
	Peers map[uint32]string // rank -> "host:port"

	handler func(Batch) (Reply, error)

	mu      sync.Mutex
	replies []Reply
}

// NewRPCWorker constructs a worker bound to its own rank and peer
// table. handler evaluates an inbound Batch against this node's
// local partitions and returns the Reply to send back to the
// caller.
func NewRPCWorker(rank uint32, peers map[uint32]string, handler func(Batch) (Reply, error)) *RPCWorker {
	return &RPCWorker{Rank: rank, Peers: peers, handler: handler}
}

// Listen registers the worker for RPC and serves HTTP on addr,
// exactly as sr/distributed.go's Worker.Listen does for InMAP's
// simulation workers.
func (w *RPCWorker) Listen(addr string) error {
	if err := rpc.Register(w); err != nil {
		return status.Wrap(status.CommInit, err)
	}
	rpc.HandleHTTP()
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return status.Wrap(status.CommInit, err)
	}
	go http.Serve(l, nil)
	return nil
}

// HandleBatch is the RPC-exported entry point a peer calls to hand
// this node a Batch; exported with the (arg, *reply) error-returning
// signature net/rpc requires, matching sr/distributed.go's own
// exported Worker methods.
func (w *RPCWorker) HandleBatch(b Batch, reply *Reply) error {
	r, err := w.handler(b)
	if err != nil {
		return err
	}
	*reply = r
	return nil
}

// SendBatch dials the peer owning toRank and hands it b via RPC,
// buffering the reply for the next RecvBatch call.
func (w *RPCWorker) SendBatch(toRank uint32, b Batch) error {
	addr, ok := w.Peers[toRank]
	if !ok {
		return status.New(status.CommSend, "worker: no peer registered for rank %d", toRank)
	}
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return status.Wrap(status.CommSend, err)
	}
	defer client.Close()
	var reply Reply
	if err := client.Call("RPCWorker.HandleBatch", b, &reply); err != nil {
		return status.Wrap(status.CommSend, err)
	}
	w.mu.Lock()
	w.replies = append(w.replies, reply)
	w.mu.Unlock()
	return nil
}

// RecvBatch drains and merges every Reply accumulated since the last
// call. The distance-join pipeline calls this once per query, after
// every SendBatch for that query has returned.
func (w *RPCWorker) RecvBatch() (Reply, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var merged Reply
	for _, r := range w.replies {
		merged.Pairs = append(merged.Pairs, r.Pairs...)
	}
	w.replies = nil
	return merged, nil
}
