// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package version

import (
	"testing"
)

func FuzzParseServer(f *testing.F) {
	for _, seed := range []string{
		"1", "v1", "1.2", "v1.29.3", "v1.28.0-gke.1337000", "v1.30.2+k3s1",
		"", ".", "1.", ".1", "1..2", "v", "-1", "1.-2", "a.b.c", "1.2.3.4", " 1.2.3", "1.+2",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParseServer(input)
		if err != nil {
			return
		}
		if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
			t.Errorf("ParseServer(%q) returned negative component: %+v", input, v)
		}
		again, err := ParseServer(v.String())
		if err != nil {
			t.Fatalf("re-parsing %q (from %q) failed: %v", v.String(), input, err)
		}
		if again.Compare(v) != 0 {
			t.Errorf("round trip mismatch for %q: %+v != %+v", input, v, again)
		}
	})
}
