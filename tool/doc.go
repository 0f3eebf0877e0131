// Package tool provides the search tools the hybrid chat agent dispatches to.
//
// Both tools implement the langchaingo tools.Tool interface (Name, Description,
// Call), so they plug into the agent's tool node or any other langchaingo
// consumer.
//
// # Web Search
//
// SerperSearch runs Google web searches through the Serper API (serper.dev).
// It answers queries about current events, live updates, and real-time data:
//
//	import "github.com/smallnest/hybridchat/tool"
//
//	search, err := tool.NewSerperSearch("your-serper-api-key")
//	if err != nil {
//		return err
//	}
//
//	result, err := search.Call(ctx, "bitcoin price today")
//
// The API key may also come from the SERP_API_KEY environment variable.
// Result count, country and language are configurable:
//
//	search, err := tool.NewSerperSearch("",
//		tool.WithSerperNum(5),
//		tool.WithSerperCountry("de"),
//		tool.WithSerperLang("de"),
//	)
//
// # Encyclopedia Lookup
//
// WikipediaSearch resolves a query to the top matching Wikipedia pages through
// the MediaWiki action API and returns their intro summaries with markup
// stripped. It needs no API key:
//
//	wiki := tool.NewWikipediaSearch()
//	result, err := wiki.Call(ctx, "Alan Turing")
//
// Point it at another MediaWiki instance or tune the summaries:
//
//	wiki := tool.NewWikipediaSearch(
//		tool.WithWikipediaBaseURL("https://de.wikipedia.org/w/api.php"),
//		tool.WithWikipediaTopK(1),
//		tool.WithWikipediaMaxChars(1000),
//	)
//
// # Output Conventions
//
// Both tools return human-readable text meant to be fed back to a model:
// numbered "Title/URL/Description" blocks for web results, "Page/Summary"
// blocks for encyclopedia pages. An empty result set is not an error; the
// tools return "No results found" or "No good Wikipedia search results found"
// so the model can fall back gracefully.
package tool
