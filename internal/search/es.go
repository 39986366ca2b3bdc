package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	es8 "github.com/elastic/go-elasticsearch/v8"
)

// PostDoc 进入索引的文章投影，只收录 published 且 is_public 的文章
type PostDoc struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
}

type Index struct {
	client *es8.Client
	index  string
}

func New(addr, index string) (*Index, error) {
	cli, err := es8.NewClient(es8.Config{Addresses: []string{addr}})
	if err != nil {
		return nil, err
	}
	return &Index{client: cli, index: index}, nil
}

// EnsureIndex 创建索引；已存在时 ES 返回 400，调用方可忽略
func (i *Index) EnsureIndex(ctx context.Context) error {
	mapping := `{
	  "mappings": {
	    "properties": {
	      "title":   {"type":"text"},
	      "content": {"type":"text"},
	      "excerpt": {"type":"text"},
	      "slug":    {"type":"keyword"}
	    }
	  }
	}`
	res, err := i.client.Indices.Create(i.index,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(bytes.NewBufferString(mapping)))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

func (i *Index) IndexDoc(ctx context.Context, doc PostDoc) error {
	b, _ := json.Marshal(doc)
	res, err := i.client.Index(i.index, bytes.NewReader(b),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(doc.ID))
	if err != nil {
		return err
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
	return nil
}

func (i *Index) DeleteDoc(ctx context.Context, id string) error {
	res, err := i.client.Delete(i.index, id, i.client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
	return nil
}

// Search 对 title/content/excerpt 做 multi_match，返回命中文档
func (i *Index) Search(ctx context.Context, q string, size int) ([]PostDoc, error) {
	if size <= 0 {
		size = 20
	}
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q,
				"fields": []string{"title^2", "content", "excerpt"},
			},
		},
	}
	b, _ := json.Marshal(body)
	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}
	var out struct {
		Hits struct {
			Hits []struct {
				Source PostDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	docs := make([]PostDoc, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, nil
}
