package graph

import graphql "github.com/graph-gophers/graphql-go"

// Schema is the whole API surface. Every mutation takes a single input
// object and returns a payload whose message field reports business
// outcomes; callers inspect the payload, not the errors array.
const Schema = `
	schema {
		query: Query
		mutation: Mutation
	}

	scalar Time

	type User {
		id: ID!
		name: String!
		email: String!
		createdAt: Time!
	}

	type Contract {
		id: ID!
		description: String!
		user: User
		userId: ID!
		fidelity: Int!
		amount: Float!
		createdAt: Time!
	}

	type Query {
		users: [User!]!
		contracts: [Contract!]!
		user(id: ID!): User
		contract(id: ID!): Contract
		contractWithoutUser(id: ID!): Contract
		contractsByUser(userId: ID!): [Contract!]!
	}

	input CreateUserInput {
		name: String!
		email: String!
	}

	input UpdateUserInput {
		id: ID!
		name: String
		email: String
	}

	input DeleteUserInput {
		id: ID!
	}

	input CreateContractInput {
		description: String!
		userId: ID!
		fidelity: Int!
		amount: Float!
	}

	input UpdateContractInput {
		id: ID!
		description: String
		fidelity: Int
		amount: Float
	}

	input DeleteContractInput {
		id: ID!
	}

	input RegisterInput {
		name: String!
		email: String!
		password: String!
	}

	input LoginInput {
		email: String!
		password: String!
	}

	input RefreshTokenInput {
		refreshToken: String!
	}

	type UserPayload {
		user: User
		message: String!
	}

	type ContractPayload {
		contract: Contract
		message: String!
	}

	type DeletePayload {
		success: Boolean!
		message: String!
	}

	type AuthPayload {
		user: User
		accessToken: String
		refreshToken: String
		message: String!
	}

	type Mutation {
		createUser(input: CreateUserInput!): UserPayload!
		updateUser(input: UpdateUserInput!): UserPayload!
		deleteUser(input: DeleteUserInput!): DeletePayload!
		createContract(input: CreateContractInput!): ContractPayload!
		updateContract(input: UpdateContractInput!): ContractPayload!
		deleteContract(input: DeleteContractInput!): DeletePayload!
		register(input: RegisterInput!): AuthPayload!
		login(input: LoginInput!): AuthPayload!
		refreshToken(input: RefreshTokenInput!): AuthPayload!
	}
`

func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(Schema, r)
}
