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


// Package search provides hybrid lexical and semantic search over archived images.
//
// The Searcher type implements two complementary retrieval modes:
//   - Lexical search: substring matching against filenames and descriptions
//   - Semantic search: cosine similarity between the query embedding and
//     stored description embeddings
//
// Semantic results are filtered by a similarity threshold, ordered by score
// with a deterministic hash tie-break, and paginated.
package search
