// internal/platform/workerpool/schedulers.go
package workerpool

import (
	"fmt"
	"sort"
	"strings"
)

// Task es cualquier unidad de trabajo que puede ordenarse antes del despacho.
type Task interface {
	// Name retorna el nombre de la tarea (único dentro de un lote)
	Name() string

	// Priority retorna la prioridad de la tarea (mayor = más prioritario)
	Priority() int

	// Weight retorna el peso/costo estimado de la tarea (0-100)
	Weight() int
}

// Scheduler define la estrategia de orden de despacho.
type Scheduler interface {
	// Schedule ordena las tareas según la estrategia
	Schedule(tasks []Task) []Task

	// Name retorna el nombre del scheduler
	Name() string
}

// Apply ordena un slice tipado con el scheduler dado sin perder el tipo.
func Apply[T Task](s Scheduler, items []T) []T {
	if s == nil {
		s = NewPriorityScheduler()
	}

	tasks := make([]Task, len(items))
	for i, it := range items {
		tasks[i] = indexed{Task: it, idx: i}
	}

	ordered := s.Schedule(tasks)
	out := make([]T, 0, len(ordered))
	for _, t := range ordered {
		out = append(out, items[t.(indexed).idx])
	}
	return out
}

// indexed recuerda la posición original de una tarea.
type indexed struct {
	Task
	idx int
}

// ByName retorna el scheduler asociado a un nombre de estrategia.
func ByName(name string) (Scheduler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "priority":
		return NewPriorityScheduler(), nil
	case "weighted":
		return NewWeightedScheduler(), nil
	case "hybrid":
		return NewHybridScheduler(0.5), nil
	case "fifo":
		return NewFIFOScheduler(), nil
	default:
		return nil, fmt.Errorf("unknown dispatch order %q (priority, weighted, hybrid, fifo)", name)
	}
}

// PriorityScheduler ordena tareas por prioridad (mayor primero).
type PriorityScheduler struct{}

// NewPriorityScheduler crea un scheduler basado en prioridad.
func NewPriorityScheduler() *PriorityScheduler {
	return &PriorityScheduler{}
}

// Schedule ordena por prioridad descendente.
func (s *PriorityScheduler) Schedule(tasks []Task) []Task {
	scheduled := make([]Task, len(tasks))
	copy(scheduled, tasks)

	sort.SliceStable(scheduled, func(i, j int) bool {
		// Mayor prioridad primero
		if scheduled[i].Priority() != scheduled[j].Priority() {
			return scheduled[i].Priority() > scheduled[j].Priority()
		}
		// Si misma prioridad, menor peso primero (tasks rápidas)
		if scheduled[i].Weight() != scheduled[j].Weight() {
			return scheduled[i].Weight() < scheduled[j].Weight()
		}
		return scheduled[i].Name() < scheduled[j].Name()
	})

	return scheduled
}

// Name retorna el nombre del scheduler.
func (s *PriorityScheduler) Name() string {
	return "priority"
}

// WeightedScheduler ordena tareas por peso/costo (menor primero).
// Estrategia: despachar primero las fuentes rápidas.
type WeightedScheduler struct{}

// NewWeightedScheduler crea un scheduler basado en peso.
func NewWeightedScheduler() *WeightedScheduler {
	return &WeightedScheduler{}
}

// Schedule ordena por peso ascendente (rápidas primero).
func (s *WeightedScheduler) Schedule(tasks []Task) []Task {
	scheduled := make([]Task, len(tasks))
	copy(scheduled, tasks)

	sort.SliceStable(scheduled, func(i, j int) bool {
		if scheduled[i].Weight() != scheduled[j].Weight() {
			return scheduled[i].Weight() < scheduled[j].Weight()
		}
		if scheduled[i].Priority() != scheduled[j].Priority() {
			return scheduled[i].Priority() > scheduled[j].Priority()
		}
		return scheduled[i].Name() < scheduled[j].Name()
	})

	return scheduled
}

// Name retorna el nombre del scheduler.
func (s *WeightedScheduler) Name() string {
	return "weighted"
}

// HybridScheduler combina prioridad y peso con un factor de balance.
// BalanceFactor [0.0-1.0]: 0.0 = solo prioridad, 1.0 = solo peso
type HybridScheduler struct {
	BalanceFactor float64
}

// NewHybridScheduler crea un scheduler híbrido.
func NewHybridScheduler(balanceFactor float64) *HybridScheduler {
	if balanceFactor < 0.0 {
		balanceFactor = 0.0
	}
	if balanceFactor > 1.0 {
		balanceFactor = 1.0
	}

	return &HybridScheduler{
		BalanceFactor: balanceFactor,
	}
}

// Schedule ordena por score híbrido.
func (s *HybridScheduler) Schedule(tasks []Task) []Task {
	type scored struct {
		task  Task
		score float64
	}

	// Las tareas pueden no ser comparables (funciones), así que el score
	// viaja junto a la tarea en lugar de indexarse en un map.
	items := make([]scored, len(tasks))
	for i, task := range tasks {
		// Score = (priority * (1 - balance)) - (weight * balance)
		priorityScore := float64(task.Priority()) * (1.0 - s.BalanceFactor)
		weightPenalty := float64(task.Weight()) * s.BalanceFactor
		items[i] = scored{task: task, score: priorityScore - weightPenalty}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].task.Name() < items[j].task.Name()
	})

	scheduled := make([]Task, len(items))
	for i, it := range items {
		scheduled[i] = it.task
	}
	return scheduled
}

// Name retorna el nombre del scheduler.
func (s *HybridScheduler) Name() string {
	return "hybrid"
}

// FIFOScheduler no reordena (First In First Out).
type FIFOScheduler struct{}

// NewFIFOScheduler crea un scheduler FIFO.
func NewFIFOScheduler() *FIFOScheduler {
	return &FIFOScheduler{}
}

// Schedule retorna tasks en el orden original.
func (s *FIFOScheduler) Schedule(tasks []Task) []Task {
	scheduled := make([]Task, len(tasks))
	copy(scheduled, tasks)
	return scheduled
}

// Name retorna el nombre del scheduler.
func (s *FIFOScheduler) Name() string {
	return "fifo"
}
