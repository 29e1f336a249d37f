// MODUL: state
// ZWECK: Lock-gekapselter Zustand fuer Cache und Zaehler
// INPUT: beliebiger Werttyp
// OUTPUT: Lese-/Schreib-Zugriff unter kuerzestmoeglicher Lock-Dauer
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: sync (stdlib)
// HINWEISE: Schreiber ersetzen den Wert immer komplett, kein Teil-Update

package license

import "sync"

// locked buendelt einen Wert mit seinem Reader/Writer-Lock
type locked[T any] struct {
	mu    sync.RWMutex
	value T
}

func (l *locked[T]) get() T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value
}

func (l *locked[T]) set(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
}

// update ersetzt den Wert atomar durch fn(alt) und liefert den neuen Wert
func (l *locked[T]) update(fn func(T) T) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = fn(l.value)
	return l.value
}
