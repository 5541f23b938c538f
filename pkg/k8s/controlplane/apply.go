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

package controlplane

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/utils/ptr"

	apperrors "github.com/flightdesk/flightdeploy/pkg/errors"
)

const decodeBufferSize = 4096

// Apply server-side applies every object in the YAML file at path.
// Objects are sent in file order; the first failure stops the file.
func (c *Client) Apply(ctx context.Context, path string) ([]Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeApplyFailed,
			"failed to read manifest "+path, err, map[string]any{"path": path})
	}
	objs, err := Decode(data)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeApplyFailed,
			"failed to decode manifest "+path, err, map[string]any{"path": path})
	}

	applied := make([]Resource, 0, len(objs))
	for _, obj := range objs {
		res, err := c.applyObject(ctx, obj)
		if err != nil {
			return applied, apperrors.WrapWithContext(apperrors.ErrCodeApplyFailed,
				fmt.Sprintf("failed to apply %s from %s", res, path), err,
				map[string]any{"path": path, "resource": res.String()})
		}
		slog.Debug("resource applied", "resource", res.String(), "path", path)
		applied = append(applied, res)
	}
	return applied, nil
}

// Decode splits multi-document YAML or JSON into objects. Empty documents are dropped.
func Decode(data []byte) ([]*unstructured.Unstructured, error) {
	dec := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), decodeBufferSize)
	var objs []*unstructured.Unstructured
	for {
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return objs, nil
			}
			return nil, err
		}
		if len(raw) == 0 {
			continue
		}
		obj := &unstructured.Unstructured{Object: raw}
		if obj.GetKind() == "" || obj.GetAPIVersion() == "" {
			return nil, fmt.Errorf("object %q is missing apiVersion or kind", obj.GetName())
		}
		objs = append(objs, obj)
	}
}

func (c *Client) applyObject(ctx context.Context, obj *unstructured.Unstructured) (Resource, error) {
	gvk := obj.GroupVersionKind()
	res := Resource{Kind: gvk.Kind, Name: obj.GetName(), Namespace: obj.GetNamespace()}

	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if meta.IsNoMatchError(err) {
		// Kinds registered by an earlier document are not in the cached discovery yet.
		if r, ok := c.mapper.(meta.ResettableRESTMapper); ok {
			r.Reset()
			mapping, err = c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
		}
	}
	if err != nil {
		return res, fmt.Errorf("failed to map %s: %w", gvk, err)
	}

	body, err := obj.MarshalJSON()
	if err != nil {
		return res, fmt.Errorf("failed to encode object: %w", err)
	}

	opts := metav1.PatchOptions{FieldManager: c.fieldManager, Force: ptr.To(true)}
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		if res.Namespace == "" {
			res.Namespace = c.namespace
			obj.SetNamespace(c.namespace)
			if body, err = obj.MarshalJSON(); err != nil {
				return res, fmt.Errorf("failed to encode object: %w", err)
			}
		}
		_, err = c.dynamic.Resource(mapping.Resource).Namespace(res.Namespace).
			Patch(ctx, res.Name, types.ApplyPatchType, body, opts)
	} else {
		res.Namespace = ""
		_, err = c.dynamic.Resource(mapping.Resource).
			Patch(ctx, res.Name, types.ApplyPatchType, body, opts)
	}
	return res, err
}
