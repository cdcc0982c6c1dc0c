// Package reliefqa embeds the ReliefWeb question-answering pipeline in a Go program.
//
// The client builds ReliefWeb queries, fetches matching documents with their page
// bodies and, when a language model is configured, answers chat questions with a
// per-session answer-reuse cache.
//
// # Raw search
//
//	client, _ := reliefqa.New(ctx, reliefqa.WithAppName("myapp"))
//	res, _ := client.Search(ctx, reliefqa.Reports, reliefqa.Params{
//	    Keyword:  "earthquake",
//	    DateFrom: reliefqa.String("2023-01-01"),
//	    DateTo:   reliefqa.String("2023-12-31"),
//	    Limit:    2,
//	})
//	if res.NoData {
//	    fmt.Println(res.Diagnostic)
//	}
//
// # Chat
//
//	client, _ := reliefqa.New(ctx,
//	    reliefqa.WithLLM(os.Getenv("MISTRAL_API_KEY"), "", ""),
//	    reliefqa.WithRedisCache("localhost:6379", "", time.Hour),
//	)
//	id, _ := client.NewSession(ctx)
//	ans, _ := client.Ask(ctx, id, "floods in Sudan")
//	fmt.Println(ans.Outcome, ans.Text)
package reliefqa
