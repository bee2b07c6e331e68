package tokenizers

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gomlx/go-tokenizers/encoding"
)

// EncodeBatch encodes many independent inputs, fanning the work out across
// GOMAXPROCS goroutines. Results keep the order of the inputs; the first
// failure cancels the batch.
//
// With PadLongest padding configured, every encoding of the batch is padded
// to the longest member after all of them are encoded.
func (t *Tokenizer) EncodeBatch(inputs []string, addSpecialTokens bool) ([]*encoding.Encoding, error) {
	results := make([]*encoding.Encoding, len(inputs))
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, input := range inputs {
		group.Go(func() error {
			enc, err := t.Encode(input, addSpecialTokens)
			if err != nil {
				return err
			}
			results[i] = enc
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if t.padding != nil && t.padding.Strategy == PadLongest {
		longest := 0
		for _, enc := range results {
			if enc.Len() > longest {
				longest = enc.Len()
			}
		}
		for _, enc := range results {
			t.padding.apply(enc, longest)
		}
	}
	return results, nil
}

// DecodeBatch decodes many independent id sequences in parallel, keeping
// input order.
func (t *Tokenizer) DecodeBatch(batches [][]uint32, skipSpecialTokens bool) ([]string, error) {
	results := make([]string, len(batches))
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, ids := range batches {
		group.Go(func() error {
			text, err := t.Decode(ids, skipSpecialTokens)
			if err != nil {
				return err
			}
			results[i] = text
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
