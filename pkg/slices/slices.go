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

// Contains returns true if an element is present in a collection.
func Contains[T comparable](s []T, e T) bool {
	for _, v := range s {
		if v == e {
			return true
		}
	}

	return false
}

// Filter returns the elements of s satisfying keep, in order.
func Filter[T any](s []T, keep func(T) bool) []T {
	var result []T
	for _, v := range s {
		if keep(v) {
			result = append(result, v)
		}
	}

	return result
}

// Difference returns the difference between two slices.
// The first value is the collection of element absent of l2.
// The second value is the collection of element absent of l1.
func Difference[T comparable](l1 []T, l2 []T) ([]T, []T) {
	left := []T{}
	right := []T{}

	visitedLeft := map[T]struct{}{}
	visitedRight := map[T]struct{}{}

	for _, e := range l1 {
		visitedLeft[e] = struct{}{}
	}

	for _, e := range l2 {
		visitedRight[e] = struct{}{}
	}

	for _, e := range l1 {
		if _, ok := visitedRight[e]; !ok {
			left = append(left, e)
		}
	}

	for _, e := range l2 {
		if _, ok := visitedLeft[e]; !ok {
			right = append(right, e)
		}
	}

	return left, right
}
