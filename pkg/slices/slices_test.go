/*
 *     Copyright 2022 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package slices

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	assert := assert.New(t)
	assert.True(Contains([]string{"s3", "oss"}, "oss"))
	assert.False(Contains([]string{"s3", "oss"}, "obs"))
	assert.False(Contains([]int{}, 1))
}

func TestFilter(t *testing.T) {
	assert := assert.New(t)
	names := []string{"ckpt_epoch_1.pth", "log_file.txt", "best_model.pth"}
	assert.Equal([]string{"ckpt_epoch_1.pth", "best_model.pth"}, Filter(names, func(name string) bool {
		return strings.HasSuffix(name, "pth")
	}))
	assert.Nil(Filter(names, func(string) bool { return false }))
}

func TestDifference(t *testing.T) {
	tests := []struct {
		name  string
		l1    []string
		l2    []string
		left  []string
		right []string
	}{
		{
			name:  "identical",
			l1:    []string{"a", "b"},
			l2:    []string{"b", "a"},
			left:  []string{},
			right: []string{},
		},
		{
			name:  "both sides differ",
			l1:    []string{"a", "b", "c"},
			l2:    []string{"b", "d"},
			left:  []string{"a", "c"},
			right: []string{"d"},
		},
		{
			name:  "empty left",
			l2:    []string{"a"},
			left:  []string{},
			right: []string{"a"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			left, right := Difference(tc.l1, tc.l2)
			assert.Equal(t, tc.left, left)
			assert.Equal(t, tc.right, right)
		})
	}
}
