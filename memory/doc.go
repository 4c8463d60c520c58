// Package memory implements hybrid memory retrieval for the turn pipeline.
//
// Retrieval is a five-step sequence owned by Retriever:
//  1. Gate: a fixed pattern set rejects retrieval for trivially simple
//     inputs (greetings, farewells, identity questions, basic arithmetic).
//  2. Semantic search: top-K similarity query against the Store.
//  3. Keyword fallback: when semantic search returns too few hits, the
//     session corpus is scanned lexically and scored by keyword coverage.
//  4. Merge: semantic and keyword result sets are unioned by record id,
//     semantic entries winning collisions, and ranked with a tie-break
//     that favors semantic origin within an epsilon band.
//  5. Filtering: conscious memories support tag, importance and source
//     filters; conversational memories pass through unfiltered.
//
// Architecture:
//   - Store: storage backend (chromem-go in-process)
//   - Embedder: text-to-vector conversion, internal to the Store
//   - Retriever: gate, fallback and merge logic on top of Store
//
// Every scoring constant is named in RetrieverConfig and overridable.
package memory
