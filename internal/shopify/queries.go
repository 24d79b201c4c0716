package shopify

import "fmt"

// GraphQL documents for the Storefront API. Fragments are inlined because
// the API accepts plain selection sets; keeping them as consts makes the
// operation bodies legible.

// cartFragment selects everything the cart store needs: identifier,
// checkout handoff URL, and the full line set with merchandise details.
const cartFragment = `
  id
  checkoutUrl
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            price {
              amount
              currencyCode
            }
            image {
              url
            }
            product {
              id
              title
              vendor
            }
          }
        }
      }
    }
  }
  cost {
    totalAmount {
      amount
      currencyCode
    }
    subtotalAmount {
      amount
      currencyCode
    }
  }
`

// productFragment selects display fields plus the first variant (the
// purchasable SKU) and collection membership for category inference.
const productFragment = `
  id
  handle
  title
  description
  descriptionHtml
  productType
  vendor
  tags
  variants(first: 1) {
    edges {
      node {
        id
        price {
          amount
          currencyCode
        }
        compareAtPrice {
          amount
          currencyCode
        }
        availableForSale
        image {
          url
        }
      }
    }
  }
  collections(first: 10) {
    edges {
      node {
        title
        handle
      }
    }
  }
  images(first: 10) {
    edges {
      node {
        url
      }
    }
  }
`

var (
	cartCreateMutation = fmt.Sprintf(`
    mutation cartCreate {
      cartCreate {
        cart {
          %s
        }
      }
    }
  `, cartFragment)

	cartQuery = fmt.Sprintf(`
    query getCart($cartId: ID!) {
      cart(id: $cartId) {
        %s
      }
    }
  `, cartFragment)

	cartLinesAddMutation = fmt.Sprintf(`
    mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
      cartLinesAdd(cartId: $cartId, lines: $lines) {
        cart {
          %s
        }
        userErrors { field message }
      }
    }
  `, cartFragment)

	cartLinesUpdateMutation = fmt.Sprintf(`
    mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
      cartLinesUpdate(cartId: $cartId, lines: $lines) {
        cart {
          %s
        }
        userErrors { field message }
      }
    }
  `, cartFragment)

	cartLinesRemoveMutation = fmt.Sprintf(`
    mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
      cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
        cart {
          %s
        }
        userErrors { field message }
      }
    }
  `, cartFragment)

	productsQuery = fmt.Sprintf(`
    query getProducts($first: Int!) {
      products(first: $first) {
        edges {
          node {
            %s
          }
        }
      }
    }
  `, productFragment)

	productByIDQuery = fmt.Sprintf(`
    query getProduct($id: ID!) {
      product(id: $id) {
        %s
      }
    }
  `, productFragment)

	productSearchQuery = fmt.Sprintf(`
    query searchProducts($query: String!, $first: Int!) {
      products(first: $first, query: $query) {
        edges {
          node {
            %s
          }
        }
      }
    }
  `, productFragment)
)

const customerCreateMutation = `
  mutation customerCreate($input: CustomerCreateInput!) {
    customerCreate(input: $input) {
      customer { id }
      customerUserErrors { code field message }
    }
  }
`

const customerAccessTokenCreateMutation = `
  mutation customerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
    customerAccessTokenCreate(input: $input) {
      customerAccessToken { accessToken expiresAt }
      customerUserErrors { code field message }
    }
  }
`

const customerQuery = `
  query getCustomer($customerAccessToken: String!) {
    customer(customerAccessToken: $customerAccessToken) {
      id
      firstName
      lastName
      email
      phone
      addresses(first: 5) {
        edges {
          node {
            id
            address1
            address2
            city
            province
            country
            zip
            firstName
            lastName
            phone
          }
        }
      }
      orders(first: 10, sortKey: PROCESSED_AT, reverse: true) {
        edges {
          node {
            id
            orderNumber
            processedAt
            totalPrice { amount currencyCode }
            statusUrl
            lineItems(first: 5) {
              edges {
                node { title quantity }
              }
            }
          }
        }
      }
    }
  }
`

const customerRecoverMutation = `
  mutation customerRecover($email: String!) {
    customerRecover(email: $email) {
      customerUserErrors { code field message }
    }
  }
`

const customerAddressCreateMutation = `
  mutation customerAddressCreate($customerAccessToken: String!, $address: MailingAddressInput!) {
    customerAddressCreate(customerAccessToken: $customerAccessToken, address: $address) {
      customerAddress { id }
      customerUserErrors { code field message }
    }
  }
`

const customerAddressDeleteMutation = `
  mutation customerAddressDelete($id: ID!, $customerAccessToken: String!) {
    customerAddressDelete(id: $id, customerAccessToken: $customerAccessToken) {
      customerUserErrors { code field message }
      deletedCustomerAddressId
    }
  }
`
