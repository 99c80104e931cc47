package usecase

// System prompt for turning a user query into optimized retrieval
// queries. The model must answer with strict JSON only.
const expandSystemPrompt = `You are an assistant specialized in transforming user queries into optimized search queries for Retrieval-Augmented Generation (RAG) systems.
Your task is to receive an "original_query" and output between 3 and 5 distinct queries that:

1. Include synonyms and linguistic variations of the key terms.
2. Are concise (no more than 6-8 words each).
3. Aim to maximize semantic coverage in retrieval.
4. Avoid unnecessary punctuation or filler phrases.

Output format (strict JSON):
{
  "original_query": "<original user query>",
  "optimized_queries": ["<query_1>", "<query_2>", "..."]
}

Make sure that most queries are in English, and a few in the language of the question.
Always return only the JSON object with the keys "original_query" and "optimized_queries". Do not include any additional commentary.`

// System prompt for generating the grounded answer.
const answerSystemPrompt = `You are an expert assistant that answers user queries based on retrieved document chunks.
Given an original user query and a list of document snippets with metadata, craft a precise and comprehensive answer.`
