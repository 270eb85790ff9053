// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

func TestContainerParallelism(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "explicit", value: "5", want: 5},
		{name: "zero falls back", value: "0", want: min(runtime.GOMAXPROCS(0), 2)},
		{name: "garbage falls back", value: "many", want: min(runtime.GOMAXPROCS(0), 2)},
		{name: "unset", value: "", want: min(runtime.GOMAXPROCS(0), 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ContainerParallelEnv, tt.value)
			if got := containerParallelism(); got != tt.want {
				t.Errorf("containerParallelism() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAcquireContainerSlot(t *testing.T) {
	sem := ContainerSemaphore()
	before := len(sem)

	t.Run("holds a slot", func(t *testing.T) {
		AcquireContainerSlot(t)
		if len(sem) != before+1 {
			t.Errorf("len(sem) = %d, want %d", len(sem), before+1)
		}
	})

	if len(sem) != before {
		t.Errorf("slot not released: len(sem) = %d, want %d", len(sem), before)
	}
}
