package saver

import (
	"errors"
	"sync"
)

// runWorkerPool runs fn over jobs with at most workers goroutines and joins every error returned
func runWorkerPool[T any](jobs []T, workers int, fn func(T) error) error {
	if len(jobs) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, len(jobs))

	jobChan := make(chan T, len(jobs))
	errChan := make(chan error, len(jobs))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				if err := fn(job); err != nil {
					errChan <- err
				}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
