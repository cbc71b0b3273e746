package pipeline

// workers.go — worker pool para el fan-out dentro de cada etapa.
//
// Las etapas del pipeline son estrictamente secuenciales entre sí, pero dentro
// de una etapa los candidatos son independientes: backtests y llamadas al
// modelo se reparten entre workers. Los resultados se escriben por índice para
// conservar el orden del batch.

import (
	"runtime"
	"sync"
)

// forEachIndexed ejecuta fn(i) para i en [0, n) repartido entre workers.
// Si workers <= 0 usa runtime.NumCPU() × 2.
func forEachIndexed(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > n {
		workers = n
	}

	workCh := make(chan int, n)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		workCh <- i
	}
	close(workCh)
	wg.Wait()
}
