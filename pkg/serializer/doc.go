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

// Package serializer renders command output as YAML, JSON or a table.
//
//	w := serializer.NewWriter(serializer.FormatTable, os.Stdout)
//	defer w.Close()
//	if err := w.Serialize(ctx, report); err != nil {
//	    return err
//	}
//
// Values implementing Tabular are printed as aligned columns in table format;
// anything else is flattened into FIELD/VALUE rows with dotted keys.
package serializer
