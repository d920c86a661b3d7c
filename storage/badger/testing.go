// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"errors"

	"github.com/poiesic/trialmatch/storage"
)

// Repositories bundles the three stores sharing one backend.
type Repositories struct {
	Patients storage.PatientRepository
	Trials   storage.TrialRepository
	Matches  storage.MatchRepository
	Backend  *Backend
}

// OpenRepositories opens a backend at path (or in memory) and creates every repository on it.
func OpenRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	patients, err := NewPatientRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	trials, err := NewTrialRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	matches, err := NewMatchRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Patients: patients,
		Trials:   trials,
		Matches:  matches,
		Backend:  backend,
	}, nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	return OpenRepositories("", true)
}

// Close releases every repository and then the backend.
func (r *Repositories) Close() error {
	return errors.Join(
		r.Matches.Close(),
		r.Trials.Close(),
		r.Patients.Close(),
		r.Backend.Close(),
	)
}
