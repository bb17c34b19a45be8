// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"sync"
)

// Consume drains items with workerCount workers until the channel is closed or ctx is done.
// A worker always finishes the item it holds; Consume returns once every worker has exited.
func Consume[T any](
	ctx context.Context,
	workerCount int,
	items <-chan T,
	process func(context.Context, T),
) error {
	if workerCount < 1 {
		workerCount = 1
	}

	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case item, ok := <-items:
					if !ok {
						return
					}
					process(ctx, item)
				}
			}
		}()
	}
	wg.Wait()

	return ctx.Err()
}
